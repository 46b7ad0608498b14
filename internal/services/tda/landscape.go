package tda

import (
	"fmt"
	"math"
	"sort"

	"TopoPull/pkg/rips"
)

// Landscape samples the first few persistence-landscape functions of a
// diagram on a fixed grid, producing the numeric vector the norm stage
// reduces. The k-th landscape at t is the k-th largest tent value
// max(0, min(t-birth, death-t)) over all pairs.
type Landscape struct {
	layers     int
	resolution int
}

// NewLandscape builds a landscape sampler with the given number of
// layers and grid resolution.
func NewLandscape(layers, resolution int) (*Landscape, error) {
	if layers < 1 {
		return nil, fmt.Errorf("landscape: layers must be >= 1, got %d", layers)
	}
	if resolution < 2 {
		return nil, fmt.Errorf("landscape: resolution must be >= 2, got %d", resolution)
	}
	return &Landscape{layers: layers, resolution: resolution}, nil
}

// Fit is a no-op kept for pipeline composition.
func (l *Landscape) Fit() *Landscape { return l }

// Profile samples one diagram. The grid spans the diagram's finite
// support; infinite deaths are clamped to the grid maximum. An empty
// diagram yields an all-zero vector of the usual length.
func (l *Landscape) Profile(d rips.Diagram) []float64 {
	out := make([]float64, l.layers*l.resolution)
	if len(d) == 0 {
		return out
	}

	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, p := range d {
		lo = math.Min(lo, p.Birth)
		if !math.IsInf(p.Death, 1) {
			hi = math.Max(hi, p.Death)
		} else {
			hi = math.Max(hi, p.Birth)
		}
	}
	if hi <= lo {
		hi = lo + 1
	}

	step := (hi - lo) / float64(l.resolution-1)
	tents := make([]float64, 0, len(d))
	for i := 0; i < l.resolution; i++ {
		t := lo + float64(i)*step
		tents = tents[:0]
		for _, p := range d {
			death := math.Min(p.Death, hi)
			v := math.Min(t-p.Birth, death-t)
			if v > 0 {
				tents = append(tents, v)
			}
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(tents)))
		for k := 0; k < l.layers && k < len(tents); k++ {
			out[k*l.resolution+i] = tents[k]
		}
	}
	return out
}

// Transform samples a batch of diagrams.
func (l *Landscape) Transform(diagrams []rips.Diagram) [][]float64 {
	out := make([][]float64, len(diagrams))
	for i, d := range diagrams {
		out[i] = l.Profile(d)
	}
	return out
}
