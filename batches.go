package charlstm

import "fmt"

// A Batch is a set of parallel input sequences and the
// next-symbol targets for every timestep.
//
// Inputs and Targets are indexed as [sequence][timestep].
type Batch struct {
	Inputs  [][]int
	Targets [][]int
}

// NumSeqs returns the number of parallel sequences.
func (b *Batch) NumSeqs() int {
	return len(b.Inputs)
}

// NumSteps returns the number of timesteps.
func (b *Batch) NumSteps() int {
	if len(b.Inputs) == 0 {
		return 0
	}
	return len(b.Inputs[0])
}

// FlatTargets returns the targets in sequence-major order,
// matching the rows of Pass.LogProbs.
func (b *Batch) FlatTargets() []int {
	res := make([]int, 0, b.NumSeqs()*b.NumSteps())
	for _, row := range b.Targets {
		res = append(res, row...)
	}
	return res
}

// A BatchIterator walks through one epoch of batches.
type BatchIterator interface {
	// Next returns the next batch, or false once the
	// epoch is exhausted.
	Next() (*Batch, bool)
}

// A BatchSource produces one BatchIterator per epoch.
type BatchSource interface {
	Epoch() BatchIterator

	// Stateful reports whether consecutive batches
	// continue the same sequences, in which case the
	// hidden state should be carried between them.
	Stateful() bool

	// Len returns the number of batches per epoch.
	Len() int
}

// ContiguousBatcher cuts an encoded corpus into NumSeqs
// rows and walks along them NumSteps at a time.
//
// Row r of batch k continues row r of batch k-1, so the
// hidden state is carried from one batch to the next.
type ContiguousBatcher struct {
	Data     []int
	NumSeqs  int
	NumSteps int
}

// Validate checks the batch dimensions.
func (c *ContiguousBatcher) Validate() error {
	if c.NumSeqs < 1 || c.NumSteps < 1 {
		return fmt.Errorf("invalid batch shape %dx%d", c.NumSeqs, c.NumSteps)
	}
	return nil
}

func (c *ContiguousBatcher) Stateful() bool {
	return true
}

func (c *ContiguousBatcher) Len() int {
	if c.Validate() != nil {
		return 0
	}
	return len(c.Data) / (c.NumSeqs * c.NumSteps)
}

// Epoch returns an iterator over every full batch.
// Symbols which do not fill a complete batch are dropped.
func (c *ContiguousBatcher) Epoch() BatchIterator {
	n := c.Len()
	rowLen := n * c.NumSteps
	rows := make([][]int, c.NumSeqs)
	if n > 0 {
		for i := range rows {
			rows[i] = c.Data[i*rowLen : (i+1)*rowLen]
		}
	}
	return &contiguousIter{rows: rows, rowLen: rowLen, steps: c.NumSteps}
}

type contiguousIter struct {
	rows   [][]int
	rowLen int
	steps  int
	offset int
}

func (c *contiguousIter) Next() (*Batch, bool) {
	if c.offset+c.steps > c.rowLen {
		return nil, false
	}
	n := c.offset
	c.offset += c.steps

	res := &Batch{
		Inputs:  make([][]int, len(c.rows)),
		Targets: make([][]int, len(c.rows)),
	}
	for i, row := range c.rows {
		in := append([]int{}, row[n:n+c.steps]...)
		target := make([]int, c.steps)
		copy(target, in[1:])
		if n+c.steps < c.rowLen {
			target[c.steps-1] = row[n+c.steps]
		} else {
			// The last batch wraps around to the row start.
			target[c.steps-1] = row[0]
		}
		res.Inputs[i] = in
		res.Targets[i] = target
	}
	return res, true
}

// WindowBatcher cuts an encoded corpus into windows of
// NumSteps symbols starting every Stride symbols.
// Windows overlap when Stride < NumSteps.
//
// Windows are grouped NumSeqs per batch. Batches do not
// continue each other, so the hidden state is reset for
// every batch.
type WindowBatcher struct {
	Data     []int
	NumSeqs  int
	NumSteps int
	Stride   int
}

// Validate checks the batch dimensions.
func (w *WindowBatcher) Validate() error {
	if w.NumSeqs < 1 || w.NumSteps < 1 || w.Stride < 1 {
		return fmt.Errorf("invalid window shape %dx%d (stride %d)", w.NumSeqs,
			w.NumSteps, w.Stride)
	}
	return nil
}

func (w *WindowBatcher) Stateful() bool {
	return false
}

func (w *WindowBatcher) Len() int {
	if w.Validate() != nil {
		return 0
	}
	return w.numWindows() / w.NumSeqs
}

func (w *WindowBatcher) numWindows() int {
	if w.Validate() != nil || len(w.Data) < w.NumSteps+1 {
		return 0
	}
	return (len(w.Data)-w.NumSteps-1)/w.Stride + 1
}

func (w *WindowBatcher) Epoch() BatchIterator {
	return &windowIter{batcher: w, remaining: w.Len()}
}

type windowIter struct {
	batcher   *WindowBatcher
	remaining int
	start     int
}

func (w *windowIter) Next() (*Batch, bool) {
	if w.remaining == 0 {
		return nil, false
	}
	w.remaining--

	b := w.batcher
	res := &Batch{
		Inputs:  make([][]int, b.NumSeqs),
		Targets: make([][]int, b.NumSeqs),
	}
	for i := 0; i < b.NumSeqs; i++ {
		s := w.start
		res.Inputs[i] = append([]int{}, b.Data[s:s+b.NumSteps]...)
		res.Targets[i] = append([]int{}, b.Data[s+1:s+b.NumSteps+1]...)
		w.start += b.Stride
	}
	return res, true
}
