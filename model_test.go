package charlstm

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestLSTMGenerate(t *testing.T) {
	corpus := repetitiveCorpus(t)
	l := &LSTM{}
	l.TrainingFlags().Parse([]string{"-epochs", "2", "-hidden", "8", "-layers", "1",
		"-seqs", "2", "-steps", "5", "-stride", "3"})
	if err := l.Train(corpus); err != nil {
		t.Fatal(err)
	}
	l.GenerationFlags().Parse([]string{"-length", "12", "-prime", "ab", "-topk", "2"})

	var buf bytes.Buffer
	if err := l.Generate(&buf); err != nil {
		t.Fatal(err)
	}
	text := strings.TrimSuffix(buf.String(), "\n")
	if !strings.HasPrefix(text, "ab") || utf8.RuneCountInString(text) != 14 {
		t.Errorf("unexpected output: %q", text)
	}
	if _, err := corpus.Vocab.Encode(text); err != nil {
		t.Error(err)
	}
}

func TestLSTMResumeUnknownSymbol(t *testing.T) {
	l := &LSTM{}
	l.TrainingFlags().Parse([]string{"-epochs", "1", "-hidden", "4", "-layers", "1",
		"-seqs", "2", "-steps", "5"})
	if err := l.Train(repetitiveCorpus(t)); err != nil {
		t.Fatal(err)
	}
	other, err := NewCorpus(strings.Repeat("abcx", 50))
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Train(other); err == nil {
		t.Error("expected an error for a symbol outside the vocabulary")
	}
}

func TestMarkov(t *testing.T) {
	corpus, err := NewCorpus(strings.Repeat("ab", 20))
	if err != nil {
		t.Fatal(err)
	}
	m := &Markov{}
	m.TrainingFlags().Parse([]string{"-history", "1", "-validation", "0"})
	if err := m.Train(corpus); err != nil {
		t.Fatal(err)
	}
	if p := m.Table["a"]['b']; p != 1 {
		t.Errorf("expected P(b|a)=1 but got %f", p)
	}
	for state, dist := range m.Table {
		var sum float64
		for _, p := range dist {
			sum += p
		}
		if sum < 1-1e-8 || sum > 1+1e-8 {
			t.Errorf("state %q: probabilities sum to %f", state, sum)
		}
	}

	m.GenerationFlags().Parse([]string{"-length", "5", "-prime", "a"})
	m.Source = rand.NewPCG(1, 1)
	var buf bytes.Buffer
	if err := m.Generate(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "ababab\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}

	data, err := m.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	m1, err := DeserializeMarkov(data)
	if err != nil {
		t.Fatal(err)
	}
	if m1.History != 1 || m1.Table["b"]['a'] != 1 {
		t.Errorf("bad deserialized model: %+v", m1)
	}
}

func TestMarkovBackoff(t *testing.T) {
	corpus, err := NewCorpus("abcabd")
	if err != nil {
		t.Fatal(err)
	}
	m := &Markov{History: 2}
	if err := m.Train(corpus); err != nil {
		t.Fatal(err)
	}
	dist := m.Distribution([]rune("xb"))
	if dist['c'] != 0.5 || dist['d'] != 0.5 {
		t.Errorf("unexpected backoff distribution: %v", dist)
	}
}
