// Package rips computes persistent homology of Vietoris-Rips filtrations
// built from point clouds. The staged construction (distance matrix,
// 1-skeleton, optional edge collapse, flag expansion, boundary matrix
// reduction over a prime field) is hidden behind a single
// request/response call: points plus options in, per-dimension
// persistence diagrams out.
package rips

import (
	"fmt"
	"math"
)

// Pair is one persistence interval. Death is +Inf for classes that never
// die within the filtration.
type Pair struct {
	Birth float64 `json:"birth"`
	Death float64 `json:"death"`
}

// Persistence returns the lifespan of the pair.
func (p Pair) Persistence() float64 { return p.Death - p.Birth }

// Diagram is the persistence diagram of one homology dimension.
type Diagram []Pair

// Options configures one persistence computation.
type Options struct {
	// MaxEdgeLength excludes edges longer than this from the skeleton.
	// Zero or negative means unbounded.
	MaxEdgeLength float64
	// MaxDimension is the highest simplex dimension the flag complex is
	// expanded to. Homology is reported for dimensions 0..MaxDimension;
	// dimension MaxDimension has no finite deaths by construction.
	MaxDimension int
	// CollapseEdges prunes dominated edges before expansion. The result
	// is unchanged for homology dimensions below MaxDimension.
	CollapseEdges bool
	// Field is the prime modulus of the coefficient field.
	Field uint64
	// MinPersistence drops finite pairs with persistence at or below the
	// threshold. A negative value keeps everything, including
	// zero-persistence pairs.
	MinPersistence float64
}

// IsPrime reports whether p is prime (trial division; moduli are small).
func IsPrime(p uint64) bool {
	if p < 2 {
		return false
	}
	for d := uint64(2); d*d <= p; d++ {
		if p%d == 0 {
			return false
		}
	}
	return true
}

// ComputePersistence builds the Rips filtration for points and returns
// one diagram per homology dimension 0..MaxDimension. Degenerate clouds
// (empty, single point, all-identical points) yield well-formed, possibly
// empty diagrams rather than errors.
func ComputePersistence(points [][]float64, opts Options) ([]Diagram, error) {
	if !IsPrime(opts.Field) {
		return nil, fmt.Errorf("rips: homology coefficient field %d is not prime", opts.Field)
	}
	if opts.MaxDimension < 0 {
		return nil, fmt.Errorf("rips: max dimension %d is negative", opts.MaxDimension)
	}

	diagrams := make([]Diagram, opts.MaxDimension+1)
	if len(points) == 0 {
		return diagrams, nil
	}

	maxLen := opts.MaxEdgeLength
	if maxLen <= 0 {
		maxLen = math.Inf(1)
	}

	adj := adjacency(distanceMatrix(points), maxLen)
	if opts.CollapseEdges {
		collapseEdges(adj)
	}
	simplices := expand(len(points), adj, opts.MaxDimension)
	return reducePairs(simplices, opts.Field, opts.MaxDimension, opts.MinPersistence), nil
}
