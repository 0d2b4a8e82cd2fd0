package charlstm

import (
	"math"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTopK(t *testing.T) {
	values := []float64{0.1, 0.4, 0.2, 0.4, 0.3}
	if actual := TopK(values, 3); !reflect.DeepEqual(actual, []int{1, 3, 4}) {
		t.Errorf("unexpected indices: %v", actual)
	}
	if actual := TopK(values, 10); len(actual) != 5 {
		t.Errorf("expected 5 indices but got %d", len(actual))
	}
	if values[0] != 0.1 {
		t.Error("input was modified")
	}
}

func TestSymbolProbs(t *testing.T) {
	logProbs := logs(0.1, 0.2, 0.3, 0.4)

	probs := SymbolProbs(logProbs, 0, 1)
	assertProbs(t, probs, []float64{0.1, 0.2, 0.3, 0.4})

	probs = SymbolProbs(logProbs, 2, 1)
	assertProbs(t, probs, []float64{0, 0, 0.3 / 0.7, 0.4 / 0.7})

	probs = SymbolProbs(logProbs, 0, 0.01)
	if probs[3] < 0.99 {
		t.Errorf("low temperature should favor the argmax: %v", probs)
	}

	probs = SymbolProbs(logProbs, 0, 1e6)
	assertProbs(t, probs, []float64{0.25, 0.25, 0.25, 0.25})
}

func TestChooseSymbolTopK(t *testing.T) {
	logProbs := logs(0.3, 0.05, 0.4, 0.25)
	src := rand.NewPCG(1, 2)
	for i := 0; i < 200; i++ {
		idx := ChooseSymbol(logProbs, 2, 1, src)
		if idx != 0 && idx != 2 {
			t.Fatalf("chose index %d outside of the top 2", idx)
		}
	}
}

func TestSamplerOutput(t *testing.T) {
	vocab := NewVocabulary("hello world")
	s := &Sampler{
		Net:    NewNetwork(vocab.Len(), 8, 2, 0.5),
		Vocab:  vocab,
		Source: rand.NewPCG(3, 4),
	}
	text, err := s.Sample("he", 30)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "he") {
		t.Errorf("missing prime: %q", text)
	}
	if n := utf8.RuneCountInString(text); n != 32 {
		t.Errorf("expected 32 symbols but got %d", n)
	}
	if _, err := vocab.Encode(text); err != nil {
		t.Errorf("output outside vocabulary: %v", err)
	}

	if text, err := s.Sample("wor", 0); err != nil || text != "wor" {
		t.Errorf("expected only the prime but got %q (%v)", text, err)
	}
}

func TestSamplerGreedy(t *testing.T) {
	vocab := NewVocabulary("abcdef")
	net := NewNetwork(vocab.Len(), 8, 1, 1)
	var outputs []string
	for i := uint64(0); i < 2; i++ {
		s := &Sampler{Net: net, Vocab: vocab, TopK: 1, Source: rand.NewPCG(i, i)}
		text, err := s.Sample("ab", 10)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, text)
	}
	if outputs[0] != outputs[1] {
		t.Errorf("top-1 sampling is not deterministic: %q vs %q", outputs[0], outputs[1])
	}
}

func TestSamplerErrors(t *testing.T) {
	vocab := NewVocabulary("abc")
	s := &Sampler{Net: NewNetwork(vocab.Len(), 4, 1, 1), Vocab: vocab}
	if _, err := s.Sample("", 5); err != ErrEmptyPrime {
		t.Errorf("expected ErrEmptyPrime but got %v", err)
	}
	if _, err := s.Sample("abz", 5); err == nil {
		t.Error("expected error for unknown symbol")
	}
	s.Net = NewNetwork(4, 4, 1, 1)
	if _, err := s.Sample("ab", 5); err == nil {
		t.Error("expected error for mismatched vocabulary")
	}
}

func logs(probs ...float64) []float32 {
	res := make([]float32, len(probs))
	for i, p := range probs {
		res[i] = float32(math.Log(p))
	}
	return res
}

func assertProbs(t *testing.T, actual, expected []float64) {
	t.Helper()
	for i, x := range expected {
		if math.Abs(actual[i]-x) > 1e-5 {
			t.Errorf("expected %v but got %v", expected, actual)
			return
		}
	}
}
