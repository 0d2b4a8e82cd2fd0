package charlstm

import (
	"errors"
	"fmt"

	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// A Checkpoint bundles a trained Network with the
// Vocabulary needed to encode its inputs and decode its
// outputs.
type Checkpoint struct {
	Net   *Network
	Vocab *Vocabulary
}

// DeserializeCheckpoint decodes a Checkpoint produced by
// Checkpoint.Serialize.
func DeserializeCheckpoint(d []byte) (c *Checkpoint, err error) {
	defer essentials.AddCtxTo("deserialize checkpoint", &err)

	var hidden, layers int
	var keepProb float64
	var symbols string
	var block anyrnn.Block
	err = serializer.DeserializeAny(d, &hidden, &layers, &keepProb, &symbols, &block)
	if err != nil {
		return nil, err
	}
	stack, ok := block.(anyrnn.Stack)
	if !ok {
		return nil, fmt.Errorf("unexpected block type %T", block)
	}
	if len(stack) != 2*layers+1 {
		return nil, errors.New("block does not match layer count")
	}
	vocab, err := VocabularyFromSymbols(symbols)
	if err != nil {
		return nil, err
	}
	return &Checkpoint{
		Net: &Network{
			HiddenSize: hidden,
			NumLayers:  layers,
			KeepProb:   keepProb,
			VocabSize:  vocab.Len(),
			Block:      stack,
		},
		Vocab: vocab,
	}, nil
}

// Serialize encodes the hyper-parameters, the vocabulary
// symbols, and the trained parameters.
func (c *Checkpoint) Serialize() ([]byte, error) {
	return serializer.SerializeAny(
		c.Net.HiddenSize,
		c.Net.NumLayers,
		c.Net.KeepProb,
		c.Vocab.Symbols(),
		c.Net.Block,
	)
}
