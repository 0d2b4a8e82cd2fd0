package charlstm

import (
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
)

// OneHot creates a vector of the given size with a single
// 1 at index idx.
func OneHot(idx, size int) anyvec.Vector {
	res := make([]float32, size)
	res[idx] = 1
	return anyvec32.MakeVectorData(res)
}

// OneHotBatch packs one one-hot vector per index, one
// after another, into a single vector of len(indices)*size
// components.
func OneHotBatch(indices []int, size int) anyvec.Vector {
	res := make([]float32, len(indices)*size)
	for i, idx := range indices {
		res[i*size+idx] = 1
	}
	return anyvec32.MakeVectorData(res)
}

// stepColumn extracts the symbol of every sequence at
// timestep t.
func stepColumn(rows [][]int, t int) []int {
	res := make([]int, len(rows))
	for i, row := range rows {
		res[i] = row[t]
	}
	return res
}
