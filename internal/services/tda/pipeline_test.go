package tda

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPipelineEndToEnd(t *testing.T) {
	table := makeTable(10, 2)

	sel, err := NewSelector(0, 10, 5)
	require.NoError(t, err)
	comp, err := NewComputer(ComputerConfig{
		MaxComplexDimension:  2,
		MaxHomologyDimension: 1,
		CoefficientField:     2,
	})
	require.NoError(t, err)
	land, err := NewLandscape(3, 20)
	require.NoError(t, err)

	p := &Pipeline{Selector: sel, Computer: comp, Landscape: land}
	res, err := p.Run(context.Background(), "run-1", table)
	require.NoError(t, err)

	require.Equal(t, 5, res.Windows)
	require.Equal(t, 2, res.Dimensions)
	require.Len(t, res.Rows, 10) // 5 windows x 2 dimensions

	for i, row := range res.Rows {
		require.Equal(t, "run-1", row.RunID)
		require.Equal(t, i/2, row.WindowIndex)
		require.Equal(t, i%2, row.Dimension)
		require.GreaterOrEqual(t, row.L1, 0.0)
		require.GreaterOrEqual(t, row.L2, 0.0)
		require.GreaterOrEqual(t, row.L1, row.L2) // L1 dominates L2 pointwise sums
	}
}

func TestPipelineEmptyRange(t *testing.T) {
	table := makeTable(4, 2)

	sel, err := NewSelector(0, 4, 4)
	require.NoError(t, err)
	comp, err := NewComputer(ComputerConfig{CoefficientField: 2})
	require.NoError(t, err)
	land, err := NewLandscape(5, 100)
	require.NoError(t, err)

	p := &Pipeline{Selector: sel, Computer: comp, Landscape: land}
	res, err := p.Run(context.Background(), "run-2", table)
	require.NoError(t, err)
	require.Zero(t, res.Windows)
	require.Empty(t, res.Rows)
}
