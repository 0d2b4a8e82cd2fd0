package charlstm

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

func TestReadCorpusDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.txt":   "world",
		"a.txt":   "hello ",
		".hidden": "zzz",
	}
	for name, contents := range files {
		if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(contents),
			0644); err != nil {
			t.Fatal(err)
		}
	}
	c, err := ReadCorpus(dir)
	if err != nil {
		t.Fatal(err)
	}
	if c.Text != "hello world" {
		t.Errorf("unexpected text: %q", c.Text)
	}
	if _, ok := c.Vocab.Index('z'); ok {
		t.Error("hidden file was read")
	}
	if len(c.Data) != 11 {
		t.Errorf("expected 11 symbols but got %d", len(c.Data))
	}
}

func TestReadCorpusMaxChars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := ioutil.WriteFile(path, []byte("héllo world"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(MaxCharsEnvVar, "4")
	c, err := ReadCorpus(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Text != "héll" {
		t.Errorf("unexpected text: %q", c.Text)
	}

	t.Setenv(MaxCharsEnvVar, "nope")
	if _, err := ReadCorpus(path); err == nil {
		t.Error("expected error for invalid limit")
	}
}

func TestReadCorpusInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.bin")
	if err := ioutil.WriteFile(path, []byte{'a', 0xff, 'b', 0xfe}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCorpus(path); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := NewCorpus("ok\xc3"); err != ErrInvalidUTF8 {
		t.Errorf("expected ErrInvalidUTF8 but got %v", err)
	}
}

func TestReadCorpusMissing(t *testing.T) {
	if _, err := ReadCorpus(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error")
	}
	if _, err := NewCorpus(""); err != ErrEmptyCorpus {
		t.Errorf("expected ErrEmptyCorpus but got %v", err)
	}
}

func TestCorpusSplit(t *testing.T) {
	c, err := NewCorpus("abcdefghij")
	if err != nil {
		t.Fatal(err)
	}
	train, val := c.Split(0.1)
	if len(train) != 9 || len(val) != 1 {
		t.Fatalf("unexpected split sizes %d and %d", len(train), len(val))
	}
	if c.Vocab.Decode(val) != "j" {
		t.Errorf("validation should be the corpus suffix")
	}
	train, val = c.Split(0)
	if len(train) != 10 || len(val) != 0 {
		t.Errorf("unexpected split sizes %d and %d", len(train), len(val))
	}
}
