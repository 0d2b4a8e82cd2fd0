package charlstm

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/unixpickle/rip"
	"github.com/unixpickle/serializer"
)

const (
	defaultLSTMHiddenSize = 256
	defaultLSTMLayerCount = 2
	defaultLSTMKeepProb   = 0.5

	defaultLSTMGenLength = 200
	defaultLSTMPrime     = "The"
)

func init() {
	var l LSTM
	serializer.RegisterTypedDeserializer(l.SerializerType(), DeserializeLSTM)
}

// LSTM is a Model for stacked long short-term memory RNNs.
type LSTM struct {
	lstmTrainingFlags
	lstmGenerationFlags

	Net   *Network
	Vocab *Vocabulary
}

func DeserializeLSTM(d []byte) (*LSTM, error) {
	c, err := DeserializeCheckpoint(d)
	if err != nil {
		return nil, err
	}
	return &LSTM{Net: c.Net, Vocab: c.Vocab}, nil
}

func (l *LSTM) Name() string {
	return "lstm"
}

func (l *LSTM) Train(c *Corpus) error {
	data := c.Data
	if l.Net == nil {
		l.Vocab = c.Vocab
		l.Net = NewNetwork(l.Vocab.Len(), l.Hidden, l.Layers, l.KeepProb)
		log.Printf("Created network: %d symbols, %d layers of %d units",
			l.Vocab.Len(), l.Layers, l.Hidden)
	} else {
		// A resumed model keeps its own vocabulary.
		var err error
		data, err = l.Vocab.Encode(c.Text)
		if err != nil {
			return err
		}
	}

	split := &Corpus{Text: c.Text, Vocab: l.Vocab, Data: data}
	training, validation := split.Split(l.Validation)
	log.Printf("Training: %d symbols", len(training))
	log.Printf("Validation: %d symbols", len(validation))

	t := &Trainer{
		Net:        l.Net,
		Train:      l.batchSource(training),
		Validation: l.batchSource(validation),
		StepSize:   l.StepSize,
		ClipNorm:   l.ClipNorm,
		Epochs:     l.Epochs,
		PrintEvery: l.PrintEvery,
	}

	log.Println("Training (ctrl+c to stop)...")
	r := rip.NewRIP()
	defer r.Close()
	_, err := t.Run(r.Chan())
	return err
}

func (l *LSTM) batchSource(data []int) BatchSource {
	if l.Stride > 0 {
		return &WindowBatcher{
			Data:     data,
			NumSeqs:  l.NumSeqs,
			NumSteps: l.NumSteps,
			Stride:   l.Stride,
		}
	}
	return &ContiguousBatcher{Data: data, NumSeqs: l.NumSeqs, NumSteps: l.NumSteps}
}

func (l *LSTM) Generate(w io.Writer) error {
	if l.Net == nil {
		return errors.New("model has not been trained")
	}
	s := &Sampler{
		Net:         l.Net,
		Vocab:       l.Vocab,
		TopK:        l.TopK,
		Temperature: l.Temperature,
	}
	text, err := s.Sample(l.Prime, l.Length)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, text)
	return err
}

func (l *LSTM) SerializerType() string {
	return "github.com/unixpickle/char-lstm.LSTM"
}

func (l *LSTM) Serialize() ([]byte, error) {
	if l.Net == nil {
		return nil, errors.New("serialize LSTM: no network")
	}
	return (&Checkpoint{Net: l.Net, Vocab: l.Vocab}).Serialize()
}

type lstmTrainingFlags struct {
	Epochs     int
	NumSeqs    int
	NumSteps   int
	Stride     int
	StepSize   float64
	ClipNorm   float64
	Validation float64
	PrintEvery int

	Hidden   int
	Layers   int
	KeepProb float64
}

func (l *lstmTrainingFlags) TrainingFlags() *flag.FlagSet {
	res := flag.NewFlagSet("lstm", flag.ExitOnError)
	res.IntVar(&l.Epochs, "epochs", DefaultEpochs, "training epochs (0 runs until ctrl+c)")
	res.IntVar(&l.NumSeqs, "seqs", DefaultNumSeqs, "parallel sequences per batch")
	res.IntVar(&l.NumSteps, "steps", DefaultNumSteps, "timesteps per batch")
	res.IntVar(&l.Stride, "stride", 0, "window stride (0 uses contiguous batches)")
	res.Float64Var(&l.StepSize, "step", DefaultStepSize, "step size")
	res.Float64Var(&l.ClipNorm, "clip", DefaultClipNorm, "gradient norm limit")
	res.Float64Var(&l.Validation, "validation", DefaultValidation, "validation fraction")
	res.IntVar(&l.PrintEvery, "print", DefaultPrintEvery, "steps between status reports")
	res.IntVar(&l.Hidden, "hidden", defaultLSTMHiddenSize, "hidden neuron count")
	res.IntVar(&l.Layers, "layers", defaultLSTMLayerCount, "LSTM layer count")
	res.Float64Var(&l.KeepProb, "dropout", defaultLSTMKeepProb, "dropout remain probability")
	return res
}

type lstmGenerationFlags struct {
	Length      int
	Prime       string
	TopK        int
	Temperature float64
}

func (l *lstmGenerationFlags) GenerationFlags() *flag.FlagSet {
	res := flag.NewFlagSet("lstm", flag.ExitOnError)
	res.IntVar(&l.Length, "length", defaultLSTMGenLength, "generated string length")
	res.StringVar(&l.Prime, "prime", defaultLSTMPrime, "starting text")
	res.IntVar(&l.TopK, "topk", 0, "sample from the K most likely symbols (0 for all)")
	res.Float64Var(&l.Temperature, "temp", 1, "sampling temperature")
	return res
}
