package charlstm

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/unixpickle/serializer"
)

func init() {
	var m Markov
	serializer.RegisterTypedDeserializer(m.SerializerType(), DeserializeMarkov)
}

const entropySoftener = 1e-5

// Markov is a Model for a character-level Markov chain.
//
// The table holds a distribution for every context of up
// to History symbols, so generation can back off to a
// shorter context when a long one was never seen.
type Markov struct {
	Table   map[string]map[rune]float64
	History int

	Validation float64 `json:"-"`

	Length      int         `json:"-"`
	Prime       string      `json:"-"`
	TopK        int         `json:"-"`
	Temperature float64     `json:"-"`
	Source      rand.Source `json:"-"`
}

func DeserializeMarkov(d []byte) (*Markov, error) {
	var res Markov
	if err := json.Unmarshal(d, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (m *Markov) Name() string {
	return "markov"
}

func (m *Markov) TrainingFlags() *flag.FlagSet {
	f := flag.NewFlagSet("markov", flag.ExitOnError)
	f.IntVar(&m.History, "history", 3, "character history size")
	f.Float64Var(&m.Validation, "validation", DefaultValidation, "validation fraction")
	return f
}

func (m *Markov) GenerationFlags() *flag.FlagSet {
	f := flag.NewFlagSet("markov", flag.ExitOnError)
	f.IntVar(&m.Length, "length", defaultLSTMGenLength, "generated string length")
	f.StringVar(&m.Prime, "prime", "", "starting text")
	f.IntVar(&m.TopK, "topk", 0, "sample from the K most likely symbols (0 for all)")
	f.Float64Var(&m.Temperature, "temp", 1, "sampling temperature")
	return f
}

func (m *Markov) Train(c *Corpus) error {
	trainIdx, valIdx := c.Split(m.Validation)
	training := []rune(c.Vocab.Decode(trainIdx))
	validation := []rune(c.Vocab.Decode(valIdx))
	log.Printf("Training: %d symbols", len(training))
	log.Printf("Validation: %d symbols", len(validation))

	m.Table = map[string]map[rune]float64{}
	totals := map[string]float64{}

	log.Println("Producing chain...")
	for i, ch := range training {
		for h := 0; h <= m.History && h <= i; h++ {
			state := string(training[i-h : i])
			if m.Table[state] == nil {
				m.Table[state] = map[rune]float64{}
			}
			m.Table[state][ch]++
			totals[state]++
		}
	}

	log.Println("Normalizing chain...")
	for state, total := range totals {
		for k, v := range m.Table[state] {
			m.Table[state][k] = v / total
		}
	}

	log.Println("Training entropy:", m.averageEntropy(training))
	log.Println("Validation entropy:", m.averageEntropy(validation))
	return nil
}

func (m *Markov) Generate(w io.Writer) error {
	state := []rune(m.Prime)
	if len(state) > m.History {
		state = state[len(state)-m.History:]
	}
	res := []rune(m.Prime)
	for i := 0; i < m.Length; i++ {
		next, ok := m.selectRandom(state)
		if !ok {
			break
		}
		res = append(res, next)
		state = m.appendState(state, next)
	}
	_, err := fmt.Fprintln(w, string(res))
	return err
}

func (m *Markov) SerializerType() string {
	return "github.com/unixpickle/char-lstm.Markov"
}

func (m *Markov) Serialize() ([]byte, error) {
	return json.Marshal(m)
}

// Distribution returns the next-symbol distribution for
// the longest known suffix of state.
func (m *Markov) Distribution(state []rune) map[rune]float64 {
	for len(state) > 0 {
		if next := m.Table[string(state)]; len(next) > 0 {
			return next
		}
		state = state[1:]
	}
	return m.Table[""]
}

func (m *Markov) averageEntropy(s []rune) float64 {
	if len(s) == 0 {
		return 0
	}
	var entropy float64
	state := []rune{}
	for _, r := range s {
		p := m.Table[string(state)][r]
		if p == 0 {
			p = entropySoftener
		}
		entropy -= math.Log(p)
		state = m.appendState(state, r)
	}
	return entropy / float64(len(s))
}

func (m *Markov) selectRandom(state []rune) (rune, bool) {
	next := m.Distribution(state)
	if len(next) == 0 {
		return 0, false
	}
	symbols := make([]rune, 0, len(next))
	for r := range next {
		symbols = append(symbols, r)
	}
	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i] < symbols[j]
	})
	logProbs := make([]float32, len(symbols))
	for i, r := range symbols {
		logProbs[i] = float32(math.Log(next[r]))
	}
	return symbols[ChooseSymbol(logProbs, m.TopK, m.Temperature, m.Source)], true
}

func (m *Markov) appendState(state []rune, r rune) []rune {
	state = append(state, r)
	if len(state) > m.History {
		copy(state, state[1:])
		state = state[:len(state)-1]
	}
	return state
}
