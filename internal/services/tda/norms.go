package tda

import (
	"math"

	"TopoPull/internal/domain/models"
)

// LPNorm reduces each numeric vector (a sampled landscape, or any
// diagram summary) to its L1 and L2 norms. Pure and stateless; an empty
// vector reduces to (0, 0) by definition, not by error.
type LPNorm struct{}

// Fit is a no-op kept for pipeline composition.
func (n LPNorm) Fit() LPNorm { return n }

// Reduce computes the norms of a single vector.
func (LPNorm) Reduce(v []float64) models.NormPair {
	var l1, sq float64
	for _, x := range v {
		l1 += math.Abs(x)
		sq += x * x
	}
	return models.NormPair{L1: l1, L2: math.Sqrt(sq)}
}

// Transform reduces a batch of vectors, one norm pair each.
func (n LPNorm) Transform(vectors [][]float64) []models.NormPair {
	out := make([]models.NormPair, len(vectors))
	for i, v := range vectors {
		out[i] = n.Reduce(v)
	}
	return out
}
