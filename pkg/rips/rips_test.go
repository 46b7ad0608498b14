package rips

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func countFinite(d Diagram) (finite, infinite int) {
	for _, p := range d {
		if math.IsInf(p.Death, 1) {
			infinite++
		} else {
			finite++
		}
	}
	return
}

func TestEquilateralTriangle(t *testing.T) {
	h := math.Sqrt(3) / 2
	points := [][]float64{{0, 0}, {1, 0}, {0.5, h}}

	diagrams, err := ComputePersistence(points, Options{
		MaxEdgeLength: 1.5,
		MaxDimension:  1,
		Field:         2,
	})
	require.NoError(t, err)
	require.Len(t, diagrams, 2)

	// Two components die when the first two edges appear; one survives.
	finite, infinite := countFinite(diagrams[0])
	require.Equal(t, 2, finite)
	require.Equal(t, 1, infinite)
	for _, p := range diagrams[0] {
		require.Equal(t, 0.0, p.Birth)
		if !math.IsInf(p.Death, 1) {
			require.InDelta(t, 1.0, p.Death, 1e-12)
		}
	}

	// The enclosed loop appears at the third edge; with expansion capped
	// at dimension 1 no triangle ever fills it.
	require.Len(t, diagrams[1], 1)
	require.InDelta(t, 1.0, diagrams[1][0].Birth, 1e-12)
	require.True(t, math.IsInf(diagrams[1][0].Death, 1))
}

func TestSinglePoint(t *testing.T) {
	diagrams, err := ComputePersistence([][]float64{{3.5, -1}}, Options{
		MaxDimension: 1,
		Field:        11,
	})
	require.NoError(t, err)
	require.Len(t, diagrams, 2)
	require.Len(t, diagrams[0], 1)
	require.Equal(t, 0.0, diagrams[0][0].Birth)
	require.True(t, math.IsInf(diagrams[0][0].Death, 1))
	require.Empty(t, diagrams[1])
}

func TestEmptyCloud(t *testing.T) {
	diagrams, err := ComputePersistence(nil, Options{MaxDimension: 2, Field: 2})
	require.NoError(t, err)
	require.Len(t, diagrams, 3)
	for _, d := range diagrams {
		require.Empty(t, d)
	}
}

func TestIdenticalPoints(t *testing.T) {
	points := [][]float64{{1, 1}, {1, 1}}

	// Default pruning drops the zero-persistence merge.
	diagrams, err := ComputePersistence(points, Options{MaxDimension: 1, Field: 2})
	require.NoError(t, err)
	finite, infinite := countFinite(diagrams[0])
	require.Equal(t, 0, finite)
	require.Equal(t, 1, infinite)

	// The sentinel keeps everything, including zero-persistence pairs.
	diagrams, err = ComputePersistence(points, Options{
		MaxDimension:   1,
		Field:          2,
		MinPersistence: -1,
	})
	require.NoError(t, err)
	finite, infinite = countFinite(diagrams[0])
	require.Equal(t, 1, finite)
	require.Equal(t, 1, infinite)
	require.Equal(t, 0.0, diagrams[0][0].Death-diagrams[0][0].Birth)
}

func TestUnitSquareLoop(t *testing.T) {
	points := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	diagrams, err := ComputePersistence(points, Options{
		MaxDimension: 2,
		Field:        3,
	})
	require.NoError(t, err)

	require.Len(t, diagrams[1], 1)
	require.InDelta(t, 1.0, diagrams[1][0].Birth, 1e-12)
	require.InDelta(t, math.Sqrt2, diagrams[1][0].Death, 1e-12)

	finite, infinite := countFinite(diagrams[0])
	require.Equal(t, 3, finite)
	require.Equal(t, 1, infinite)
}

func TestEdgeLengthThresholdSplitsComponents(t *testing.T) {
	points := [][]float64{{0, 0}, {10, 0}}
	diagrams, err := ComputePersistence(points, Options{
		MaxEdgeLength: 1,
		MaxDimension:  1,
		Field:         2,
	})
	require.NoError(t, err)
	_, infinite := countFinite(diagrams[0])
	require.Equal(t, 2, infinite)
}

func TestBirthNeverExceedsDeath(t *testing.T) {
	points := [][]float64{
		{0.1, 0.3}, {1.2, -0.4}, {0.8, 1.1}, {-0.5, 0.6},
		{2.0, 0.2}, {1.5, 1.6}, {-1.1, -0.9}, {0.4, -1.3},
	}
	diagrams, err := ComputePersistence(points, Options{
		MaxDimension:   2,
		Field:          11,
		MinPersistence: -1,
	})
	require.NoError(t, err)
	for _, d := range diagrams {
		for _, p := range d {
			require.LessOrEqual(t, p.Birth, p.Death)
		}
	}
}

func TestCollapsePreservesPersistence(t *testing.T) {
	// Noisy circle: collapse must not change the diagrams below the
	// expansion dimension, only the construction path.
	points := [][]float64{
		{1.02, 0.01}, {0.69, 0.74}, {0.03, 0.98}, {-0.71, 0.68},
		{-0.99, -0.04}, {-0.68, -0.72}, {0.02, -1.03}, {0.73, -0.69},
	}
	opts := Options{MaxDimension: 2, Field: 5}

	plain, err := ComputePersistence(points, opts)
	require.NoError(t, err)

	opts.CollapseEdges = true
	collapsed, err := ComputePersistence(points, opts)
	require.NoError(t, err)

	for dim := 0; dim < opts.MaxDimension; dim++ {
		require.Len(t, collapsed[dim], len(plain[dim]), "dimension %d", dim)
		for i := range plain[dim] {
			require.InDelta(t, plain[dim][i].Birth, collapsed[dim][i].Birth, 1e-9)
			require.InDelta(t, plain[dim][i].Death, collapsed[dim][i].Death, 1e-9)
		}
	}
}

func TestNonPrimeFieldRejected(t *testing.T) {
	_, err := ComputePersistence([][]float64{{0, 0}}, Options{MaxDimension: 1, Field: 6})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not prime")
}

func TestIsPrime(t *testing.T) {
	for _, p := range []uint64{2, 3, 5, 7, 11, 13, 46337} {
		require.True(t, IsPrime(p), "%d", p)
	}
	for _, c := range []uint64{0, 1, 4, 6, 9, 15, 46338} {
		require.False(t, IsPrime(c), "%d", c)
	}
}

func TestModularInverse(t *testing.T) {
	for _, p := range []uint64{3, 5, 11, 46337} {
		for a := uint64(1); a < 20 && a < p; a++ {
			require.Equal(t, uint64(1), a*invMod(a, p)%p)
		}
	}
}
