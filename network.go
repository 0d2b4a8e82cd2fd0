package charlstm

import (
	"errors"
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"gonum.org/v1/gonum/stat/distuv"
)

// A Network is a stacked LSTM which predicts the next
// symbol of a sequence.
//
// Each LSTM layer is followed by dropout, and the last
// dropout feeds a fully-connected layer with a log-softmax
// over the vocabulary.
type Network struct {
	HiddenSize int
	NumLayers  int
	KeepProb   float64
	VocabSize  int

	Block anyrnn.Stack
}

// NewNetwork creates a randomly initialized Network.
//
// The keepProb argument is the probability that dropout
// keeps a unit, so 1 disables dropout.
func NewNetwork(vocabSize, hidden, layers int, keepProb float64) *Network {
	c := anyvec32.CurrentCreator()
	var block anyrnn.Stack
	inCount := vocabSize
	for i := 0; i < layers; i++ {
		block = append(block,
			anyrnn.NewLSTM(c, inCount, hidden),
			&anyrnn.LayerBlock{Layer: &anynet.Dropout{KeepProb: keepProb}})
		inCount = hidden
	}
	out := anynet.NewFC(c, inCount, vocabSize)
	initOutputLayer(out)
	block = append(block, &anyrnn.LayerBlock{
		Layer: anynet.Net{out, anynet.LogSoftmax},
	})
	return &Network{
		HiddenSize: hidden,
		NumLayers:  layers,
		KeepProb:   keepProb,
		VocabSize:  vocabSize,
		Block:      block,
	}
}

func initOutputLayer(fc *anynet.FC) {
	fc.Biases.Vector.Scale(fc.Biases.Vector.Creator().MakeNumeric(0))

	dist := distuv.Uniform{Min: -1, Max: 1}
	weights := make([]float32, fc.Weights.Vector.Len())
	for i := range weights {
		weights[i] = float32(dist.Rand())
	}
	fc.Weights.Vector.SetData(weights)
}

// Parameters returns the trainable variables.
func (n *Network) Parameters() []*anydiff.Var {
	return n.Block.Parameters()
}

// Start creates a zero hidden state for numSeqs parallel
// sequences.
func (n *Network) Start(numSeqs int) anyrnn.State {
	return n.Block.Start(numSeqs)
}

// Step runs one timestep.
// The input packs one one-hot vector per sequence.
func (n *Network) Step(s anyrnn.State, in anyvec.Vector) anyrnn.Res {
	return n.Block.Step(s, in)
}

// SetDropout enables or disables every dropout layer.
// Dropout should only be enabled while training.
func (n *Network) SetDropout(enabled bool) {
	for _, block := range n.Block {
		if block, ok := block.(*anyrnn.LayerBlock); ok {
			if do, ok := block.Layer.(*anynet.Dropout); ok {
				do.Enabled = enabled
			}
		}
	}
}

// Forward runs the network over every timestep of a batch,
// starting from the state s.
func (n *Network) Forward(s anyrnn.State, b *Batch) *Pass {
	p := &Pass{NumSeqs: b.NumSeqs(), VocabSize: n.VocabSize}
	for t := 0; t < b.NumSteps(); t++ {
		in := OneHotBatch(stepColumn(b.Inputs, t), n.VocabSize)
		res := n.Step(s, in)
		p.Results = append(p.Results, res)
		s = res.State()
	}
	return p
}

// A Pass records one forward pass over a Batch so that it
// can be scored and back-propagated.
type Pass struct {
	NumSeqs   int
	VocabSize int

	// Results stores one anyrnn.Res per timestep.
	Results []anyrnn.Res
}

// State returns the hidden state after the last timestep.
func (p *Pass) State() anyrnn.State {
	return p.Results[len(p.Results)-1].State()
}

// LogProbs returns the predicted log-probabilities with
// one row per (sequence, timestep) pair.
// Row s*T+t holds the prediction for sequence s at
// timestep t.
func (p *Pass) LogProbs() [][]float32 {
	numSteps := len(p.Results)
	res := make([][]float32, p.NumSeqs*numSteps)
	for t, r := range p.Results {
		out := r.Output().Data().([]float32)
		for s := 0; s < p.NumSeqs; s++ {
			res[s*numSteps+t] = out[s*p.VocabSize : (s+1)*p.VocabSize]
		}
	}
	return res
}

// Loss computes the mean cross-entropy of the predictions
// against the targets.
func (p *Pass) Loss(targets [][]int) float64 {
	var total float64
	for t, r := range p.Results {
		out := r.Output().Data().([]float32)
		for s, row := range targets {
			total -= float64(out[s*p.VocabSize+row[t]])
		}
	}
	return total / float64(p.NumSeqs*len(p.Results))
}

// Backward accumulates the gradient of Loss into g.
//
// Back-propagation stops at the state the pass started
// from, so gradients never flow into earlier batches.
func (p *Pass) Backward(targets [][]int, g anydiff.Grad) {
	scale := float32(-1 / float64(p.NumSeqs*len(p.Results)))
	var upstream anyrnn.StateGrad
	for t := len(p.Results) - 1; t >= 0; t-- {
		u := make([]float32, p.NumSeqs*p.VocabSize)
		for s, row := range targets {
			u[s*p.VocabSize+row[t]] = scale
		}
		_, upstream = p.Results[t].Propagate(anyvec32.MakeVectorData(u), upstream, g)
	}
}

var errNotFinite = errors.New("loss is not finite")

func checkFinite(loss float64) error {
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return errNotFinite
	}
	return nil
}
