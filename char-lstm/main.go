package main

import (
	"fmt"
	"log"
	"os"

	charlstm "github.com/unixpickle/char-lstm"
)

var Models = []charlstm.Model{&charlstm.LSTM{}, &charlstm.Markov{}}

func main() {
	if len(os.Args) < 2 {
		dieUsage()
	}
	subCmd := os.Args[1]
	switch subCmd {
	case "train":
		trainCommand()
	case "gen":
		genCommand()
	case "help":
		helpCommand()
	default:
		dieUsage()
	}
}

func trainCommand() {
	if len(os.Args) < 5 {
		dieUsage()
	}

	modelFile := os.Args[3]

	model := modelForName(os.Args[2])
	corpus, err := charlstm.ReadCorpus(os.Args[4])
	if err != nil {
		die(err)
	}

	if _, err := os.Stat(modelFile); err == nil {
		loaded, err := charlstm.LoadModel(modelFile)
		if err != nil {
			die(err)
		}
		if loaded.Name() != model.Name() {
			die(fmt.Errorf("model file holds a %s model, not %s", loaded.Name(),
				model.Name()))
		}
		model = loaded
		log.Println("Loaded model from file.")
	} else {
		log.Println("Created new model.")
	}

	model.TrainingFlags().Parse(os.Args[5:])
	if err := model.Train(corpus); err != nil {
		fmt.Fprintln(os.Stderr, "Training failed:", err)
		log.Println("Saving model anyway...")
	}

	if err := charlstm.SaveModel(modelFile, model); err != nil {
		die(err)
	}
}

func genCommand() {
	if len(os.Args) < 3 {
		dieUsage()
	}

	model, err := charlstm.LoadModel(os.Args[2])
	if err != nil {
		die(err)
	}

	model.GenerationFlags().Parse(os.Args[3:])
	if err := model.Generate(os.Stdout); err != nil {
		die(err)
	}
}

func helpCommand() {
	if len(os.Args) != 3 {
		dieUsage()
	}
	m := modelForName(os.Args[2])
	fmt.Fprintf(os.Stderr, "Usage for training:\n\n")
	m.TrainingFlags().PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nUsage for generation:\n\n")
	m.GenerationFlags().PrintDefaults()
}

func dieUsage() {
	fmt.Fprintln(os.Stderr, "Usage: char-lstm train <model> <model-file> <corpus> [args]\n"+
		"       char-lstm gen <model-file> [args]\n"+
		"       char-lstm help <model>\n\n"+
		"The corpus may be a text file or a directory of text files.\n\n"+
		"Available models:")
	for _, m := range Models {
		fmt.Fprintln(os.Stderr, " "+m.Name())
	}
	fmt.Fprintln(os.Stderr, "\nEnvironment variables:")
	fmt.Fprintf(os.Stderr, " %s  only use the first N characters of the corpus\n",
		charlstm.MaxCharsEnvVar)
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}

func die(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func modelForName(name string) charlstm.Model {
	for _, m := range Models {
		if m.Name() == name {
			return m
		}
	}
	fmt.Fprintln(os.Stderr, "no such model: "+name)
	dieUsage()
	return nil
}
