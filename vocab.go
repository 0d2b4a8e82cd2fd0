package charlstm

import (
	"errors"
	"fmt"
	"sort"
)

// An UnknownSymbolError is returned when text contains a
// symbol that is not in a Vocabulary.
type UnknownSymbolError struct {
	Symbol rune
	Offset int
}

func (u *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %q at offset %d", u.Symbol, u.Offset)
}

// A Vocabulary maps the distinct symbols of a corpus to
// dense indices.
//
// Symbols are ordered by code point, so two corpora with
// the same symbol set produce the same mapping.
type Vocabulary struct {
	symbols []rune
	indices map[rune]int
}

// NewVocabulary builds a Vocabulary from every distinct
// symbol in text.
// Invalid UTF-8 bytes are read as utf8.RuneError.
func NewVocabulary(text string) *Vocabulary {
	seen := map[rune]bool{}
	var symbols []rune
	for _, r := range text {
		if !seen[r] {
			seen[r] = true
			symbols = append(symbols, r)
		}
	}
	sort.Slice(symbols, func(i, j int) bool {
		return symbols[i] < symbols[j]
	})
	return newVocabulary(symbols)
}

// VocabularyFromSymbols rebuilds a Vocabulary from the
// string produced by Symbols.
func VocabularyFromSymbols(symbols string) (*Vocabulary, error) {
	runes := []rune(symbols)
	if len(runes) == 0 {
		return nil, errors.New("empty vocabulary")
	}
	seen := map[rune]bool{}
	for _, r := range runes {
		if seen[r] {
			return nil, fmt.Errorf("duplicate vocabulary symbol %q", r)
		}
		seen[r] = true
	}
	return newVocabulary(runes), nil
}

func newVocabulary(symbols []rune) *Vocabulary {
	v := &Vocabulary{
		symbols: symbols,
		indices: make(map[rune]int, len(symbols)),
	}
	for i, r := range symbols {
		v.indices[r] = i
	}
	return v
}

// Len returns the number of symbols.
func (v *Vocabulary) Len() int {
	return len(v.symbols)
}

// Symbol returns the symbol at an index.
func (v *Vocabulary) Symbol(idx int) rune {
	return v.symbols[idx]
}

// Index looks up the index of a symbol.
func (v *Vocabulary) Index(r rune) (int, bool) {
	idx, ok := v.indices[r]
	return idx, ok
}

// Symbols returns every symbol in index order.
func (v *Vocabulary) Symbols() string {
	return string(v.symbols)
}

// Encode converts text into symbol indices.
func (v *Vocabulary) Encode(text string) ([]int, error) {
	res := make([]int, 0, len(text))
	var offset int
	for _, r := range text {
		idx, ok := v.indices[r]
		if !ok {
			return nil, &UnknownSymbolError{Symbol: r, Offset: offset}
		}
		res = append(res, idx)
		offset++
	}
	return res, nil
}

// Decode converts symbol indices back into text.
func (v *Vocabulary) Decode(indices []int) string {
	runes := make([]rune, len(indices))
	for i, idx := range indices {
		runes[i] = v.symbols[idx]
	}
	return string(runes)
}
