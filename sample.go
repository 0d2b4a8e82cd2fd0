package charlstm

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/unixpickle/anynet/anyrnn"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrEmptyPrime = errors.New("empty priming string")

// A Sampler generates text from a trained Network.
type Sampler struct {
	Net   *Network
	Vocab *Vocabulary

	// TopK restricts each choice to the K most likely
	// symbols. Values <= 0 disable the restriction.
	TopK int

	// Temperature divides the log-probabilities before
	// sampling. Values <= 0 are treated as 1.
	Temperature float64

	// Source is the randomness source.
	// If nil, the global source is used.
	Source rand.Source
}

// Sample feeds the priming text through the network and
// then generates size more symbols, feeding every chosen
// symbol back in as the next input.
//
// The result starts with the priming text and holds
// exactly len([]rune(prime))+size symbols.
func (s *Sampler) Sample(prime string, size int) (string, error) {
	if s.Net.VocabSize != s.Vocab.Len() {
		return "", fmt.Errorf("network expects %d symbols but vocabulary has %d",
			s.Net.VocabSize, s.Vocab.Len())
	}
	primeIdx, err := s.Vocab.Encode(prime)
	if err != nil {
		return "", err
	}
	if len(primeIdx) == 0 {
		return "", ErrEmptyPrime
	}

	s.Net.SetDropout(false)

	state := s.Net.Start(1)
	var logProbs []float32
	for _, idx := range primeIdx {
		state, logProbs = s.Predict(state, idx)
	}

	res := append([]int{}, primeIdx...)
	for i := 0; i < size; i++ {
		next := ChooseSymbol(logProbs, s.TopK, s.Temperature, s.Source)
		res = append(res, next)
		if i+1 < size {
			state, logProbs = s.Predict(state, next)
		}
	}
	return s.Vocab.Decode(res), nil
}

// Predict feeds one symbol through the network, returning
// the new state and the log-probabilities of the next
// symbol.
func (s *Sampler) Predict(state anyrnn.State, idx int) (anyrnn.State, []float32) {
	res := s.Net.Step(state, OneHot(idx, s.Net.VocabSize))
	return res.State(), res.Output().Data().([]float32)
}

// ChooseSymbol samples an index from a vector of
// log-probabilities.
//
// The distribution is sharpened or flattened by the
// temperature and, if 0 < topK < len(logProbs), truncated
// to the topK most likely entries and renormalized.
func ChooseSymbol(logProbs []float32, topK int, temperature float64,
	src rand.Source) int {
	probs := SymbolProbs(logProbs, topK, temperature)
	return int(distuv.NewCategorical(probs, src).Rand())
}

// SymbolProbs computes the distribution ChooseSymbol
// samples from.
func SymbolProbs(logProbs []float32, topK int, temperature float64) []float64 {
	if temperature <= 0 {
		temperature = 1
	}
	probs := make([]float64, len(logProbs))
	for i, x := range logProbs {
		probs[i] = float64(x) / temperature
	}
	maxVal := floats.Max(probs)
	for i, x := range probs {
		probs[i] = math.Exp(x - maxVal)
	}

	if topK > 0 && topK < len(probs) {
		keep := make([]bool, len(probs))
		for _, idx := range TopK(probs, topK) {
			keep[idx] = true
		}
		for i, k := range keep {
			if !k {
				probs[i] = 0
			}
		}
	}

	floats.Scale(1/floats.Sum(probs), probs)
	return probs
}

// TopK returns the indices of the k largest values, from
// largest to smallest.
// Ties are broken in favor of lower indices.
func TopK(values []float64, k int) []int {
	negated := make([]float64, len(values))
	floats.ScaleTo(negated, -1, values)
	inds := make([]int, len(values))
	floats.ArgsortStable(negated, inds)
	if k > len(inds) {
		k = len(inds)
	}
	return inds[:k]
}
