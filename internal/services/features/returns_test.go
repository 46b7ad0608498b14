package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"TopoPull/internal/domain/models"
)

func TestLogReturns(t *testing.T) {
	table := &models.Table{
		Columns: []string{"a", "b"},
		Dates: []time.Time{
			time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		Rows: [][]float64{
			{100, 50},
			{110, 50},
			{110, 25},
		},
	}

	got := LogReturns(table)
	require.Equal(t, 2, got.Len())
	require.Equal(t, []string{"a", "b"}, got.Columns)
	require.Len(t, got.Dates, 2)
	require.Equal(t, table.Dates[1], got.Dates[0])

	require.InDelta(t, math.Log(1.1), got.Rows[0][0], 1e-12)
	require.InDelta(t, 0.0, got.Rows[0][1], 1e-12)
	require.InDelta(t, math.Log(0.5), got.Rows[1][1], 1e-12)
}

func TestLogReturnsNonPositivePrice(t *testing.T) {
	table := &models.Table{
		Columns: []string{"a"},
		Rows:    [][]float64{{0}, {5}},
	}
	got := LogReturns(table)
	require.Equal(t, 1, got.Len())
	require.Equal(t, 0.0, got.Rows[0][0])
}

func TestLogReturnsTooShort(t *testing.T) {
	table := &models.Table{Columns: []string{"a"}, Rows: [][]float64{{1}}}
	require.Equal(t, 0, LogReturns(table).Len())
}

func TestTableVolatility(t *testing.T) {
	returns := &models.Table{
		Columns: []string{"a", "b"},
		Rows: [][]float64{
			{0.01, 0.02},
			{-0.01, -0.02},
			{0.01, 0.02},
			{-0.01, -0.02},
		},
	}
	vol := TableVolatility(returns, 252)
	require.Greater(t, vol, 0.0)

	// Column b has twice the swing of column a, so the average sits
	// strictly between the two per-column volatilities.
	colA := RealizedVolatility([]float64{0.01, -0.01, 0.01, -0.01}, 4, 252)
	colB := RealizedVolatility([]float64{0.02, -0.02, 0.02, -0.02}, 4, 252)
	require.InDelta(t, (colA+colB)/2, vol, 1e-12)

	require.Equal(t, 0.0, TableVolatility(&models.Table{}, 252))
	require.Equal(t, 0.0, TableVolatility(&models.Table{Rows: [][]float64{{1}}}, 252))
}

func TestRealizedVolatility(t *testing.T) {
	rets := []float64{0.01, -0.01, 0.01, -0.01}
	sigma := RealizedVolatility(rets, 4, 252)
	require.Greater(t, sigma, 0.0)

	require.Equal(t, 0.0, RealizedVolatility(rets, 10, 252))
	require.Equal(t, 0.0, RealizedVolatility(rets, 1, 252))
}
