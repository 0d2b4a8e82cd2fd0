package charlstm

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/unixpickle/essentials"
)

// MaxCharsEnvVar names the environment variable which,
// when set, truncates every corpus read by ReadCorpus.
const MaxCharsEnvVar = "CORPUS_MAX_CHARS"

var (
	ErrEmptyCorpus = errors.New("empty corpus")
	ErrInvalidUTF8 = errors.New("corpus is not valid UTF-8")
)

// A Corpus is a body of training text together with its
// vocabulary and encoding.
type Corpus struct {
	Text  string
	Vocab *Vocabulary
	Data  []int
}

// NewCorpus creates a Corpus whose vocabulary is derived
// from the text itself.
// The text must be valid UTF-8.
func NewCorpus(text string) (*Corpus, error) {
	if text == "" {
		return nil, ErrEmptyCorpus
	}
	if !utf8.ValidString(text) {
		return nil, ErrInvalidUTF8
	}
	vocab := NewVocabulary(text)
	data, err := vocab.Encode(text)
	if err != nil {
		return nil, err
	}
	return &Corpus{Text: text, Vocab: vocab, Data: data}, nil
}

// ReadCorpus reads a Corpus from a file or a directory.
//
// Directories are read one file at a time in name order,
// skipping hidden files.
func ReadCorpus(path string) (corpus *Corpus, err error) {
	defer essentials.AddCtxTo("read corpus", &err)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	if info.IsDir() {
		contents, err := ioutil.ReadDir(path)
		if err != nil {
			return nil, err
		}
		sort.Slice(contents, func(i, j int) bool {
			return contents[i].Name() < contents[j].Name()
		})
		for _, item := range contents {
			if strings.HasPrefix(item.Name(), ".") || item.IsDir() {
				continue
			}
			data, err := ioutil.ReadFile(filepath.Join(path, item.Name()))
			if err != nil {
				return nil, err
			}
			text.Write(data)
		}
	} else {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text.Write(data)
	}

	result := text.String()
	if maxVar := os.Getenv(MaxCharsEnvVar); maxVar != "" {
		maxChars, err := strconv.Atoi(maxVar)
		if err != nil || maxChars < 1 {
			return nil, errors.New("invalid " + MaxCharsEnvVar + " value: " + maxVar)
		}
		result = truncateRunes(result, maxChars)
	}

	return NewCorpus(result)
}

// Split divides the encoded corpus into a training prefix
// and a validation suffix holding valFrac of the data.
func (c *Corpus) Split(valFrac float64) (train, validation []int) {
	idx := int(float64(len(c.Data)) * (1 - valFrac))
	if idx < 0 {
		idx = 0
	} else if idx > len(c.Data) {
		idx = len(c.Data)
	}
	return c.Data[:idx], c.Data[idx:]
}

func truncateRunes(s string, n int) string {
	var count int
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
