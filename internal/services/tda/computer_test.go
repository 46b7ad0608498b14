package tda

import (
	"context"
	"testing"

	"TopoPull/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func lineCloud(n int) models.PointCloud {
	cloud := make(models.PointCloud, n)
	x := 0.0
	for i := 0; i < n; i++ {
		cloud[i] = []float64{x, 0}
		x += float64(i + 1) // distinct spacings
	}
	return cloud
}

func TestComputerDefaults(t *testing.T) {
	c, err := NewComputer(ComputerConfig{})
	require.NoError(t, err)

	cfg := c.Config()
	require.Equal(t, 2, cfg.MaxComplexDimension)
	require.Equal(t, 0, cfg.MaxHomologyDimension)
	require.Equal(t, uint64(11), cfg.CoefficientField)
	require.Equal(t, 1, c.Dimensions())
}

func TestComputerDiagramCountPerWindow(t *testing.T) {
	c, err := NewComputer(ComputerConfig{
		MaxComplexDimension:  2,
		MaxHomologyDimension: 1,
		CoefficientField:     2,
	})
	require.NoError(t, err)

	clouds := []models.PointCloud{lineCloud(4), lineCloud(5)}
	sets, err := c.Fit().Transform(context.Background(), clouds)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	for _, set := range sets {
		require.Len(t, set, 2) // max_homology_dimension + 1
	}
}

func TestComputerOnlyThisDimension(t *testing.T) {
	dim := 1
	c, err := NewComputer(ComputerConfig{
		MaxComplexDimension:  2,
		MaxHomologyDimension: 0, // overridden by OnlyThisDimension
		OnlyThisDimension:    &dim,
		CoefficientField:     3,
	})
	require.NoError(t, err)
	require.Equal(t, 1, c.Dimensions())
	require.Equal(t, 1, c.DimensionOf(0))

	sets, err := c.Transform(context.Background(), []models.PointCloud{lineCloud(3)})
	require.NoError(t, err)
	require.Len(t, sets[0], 1)
}

func TestComputerRejectsNonPrimeField(t *testing.T) {
	_, err := NewComputer(ComputerConfig{CoefficientField: 9})
	require.Error(t, err)
	require.Contains(t, err.Error(), "prime")
}

func TestComputerRejectsDimensionMismatch(t *testing.T) {
	_, err := NewComputer(ComputerConfig{
		MaxComplexDimension:  1,
		MaxHomologyDimension: 2,
		CoefficientField:     2,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "max_homology_dimension")

	bad := 5
	_, err = NewComputer(ComputerConfig{
		MaxComplexDimension: 2,
		OnlyThisDimension:   &bad,
		CoefficientField:    2,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "only_this_dimension")
}

func TestComputerDegenerateClouds(t *testing.T) {
	c, err := NewComputer(ComputerConfig{
		MaxComplexDimension:  1,
		MaxHomologyDimension: 1,
		CoefficientField:     2,
	})
	require.NoError(t, err)

	clouds := []models.PointCloud{
		{{1, 2}},         // single point
		{{0, 0}, {0, 0}}, // identical points
		{},               // empty window
	}
	sets, err := c.Transform(context.Background(), clouds)
	require.NoError(t, err)
	require.Len(t, sets, 3)

	// One essential component, nothing above dimension 0.
	require.Len(t, sets[0][0], 1)
	require.Empty(t, sets[0][1])
	require.Empty(t, sets[2][0])
}

func TestComputerPreservesBatchOrder(t *testing.T) {
	c, err := NewComputer(ComputerConfig{
		MaxComplexDimension:  1,
		MaxHomologyDimension: 0,
		CoefficientField:     2,
		MinPersistence:       -1,
		Parallelism:          4,
	})
	require.NoError(t, err)

	clouds := make([]models.PointCloud, 8)
	for i := range clouds {
		clouds[i] = lineCloud(i + 1)
	}
	sets, err := c.Transform(context.Background(), clouds)
	require.NoError(t, err)

	// A fully connected cloud of n points yields n-1 merges plus the
	// essential class: n pairs total in dimension 0.
	for i, set := range sets {
		require.Len(t, set[0], i+1, "window %d", i)
	}
}
