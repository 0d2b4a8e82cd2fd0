//go:build cuda

package main

import (
	"log"

	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/anyvec/cuda"
)

// Build with -tags cuda to run the network on a GPU.
func init() {
	handle, err := cuda.NewHandle()
	if err != nil {
		log.Fatalln("CUDA unavailable:", err)
	}
	anyvec32.Use(cuda.NewCreator32(handle))
}
