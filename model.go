// Package charlstm trains character-level language models
// and samples text from them.
package charlstm

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// OutputPermissions is the file mode for saved models.
const OutputPermissions = 0644

// A Model is a trainable language model for predicting
// characters in a string.
type Model interface {
	serializer.Serializer

	Name() string

	TrainingFlags() *flag.FlagSet
	GenerationFlags() *flag.FlagSet

	Train(c *Corpus) error
	Generate(w io.Writer) error
}

// SaveModel writes a model to a file, tagged with its
// serializer type.
func SaveModel(path string, m Model) (err error) {
	defer essentials.AddCtxTo("save model", &err)
	encoded, err := serializer.SerializeWithType(m)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, encoded, OutputPermissions)
}

// LoadModel reads a model saved by SaveModel.
func LoadModel(path string) (m Model, err error) {
	defer essentials.AddCtxTo("load model", &err)
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	x, err := serializer.DeserializeWithType(data)
	if err != nil {
		return nil, err
	}
	m, ok := x.(Model)
	if !ok {
		return nil, fmt.Errorf("loaded type was not a model but a %T", x)
	}
	return m, nil
}
