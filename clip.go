package charlstm

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// ClipGradNorm rescales g so that its global L2 norm is at
// most maxNorm.
//
// It returns the norm from before clipping.
func ClipGradNorm(g anydiff.Grad, maxNorm float64) float64 {
	var sqSum float64
	for _, vec := range g {
		sqSum += numericFloat(vec.Dot(vec))
	}
	norm := math.Sqrt(sqSum)
	if maxNorm > 0 && norm > maxNorm {
		for _, vec := range g {
			vec.Scale(vec.Creator().MakeNumeric(maxNorm / norm))
		}
	}
	return norm
}

func numericFloat(n anyvec.Numeric) float64 {
	switch n := n.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		panic("unsupported numeric type")
	}
}
