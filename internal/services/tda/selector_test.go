package tda

import (
	"testing"

	"TopoPull/internal/domain/models"

	"github.com/stretchr/testify/require"
)

func makeTable(rows, cols int) *models.Table {
	t := &models.Table{}
	for r := 0; r < rows; r++ {
		row := make([]float64, cols)
		for c := 0; c < cols; c++ {
			row[c] = float64(r*10 + c)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func TestSelectorWindowCountAndShape(t *testing.T) {
	table := makeTable(10, 2)

	s, err := NewSelector(0, 10, 5)
	require.NoError(t, err)

	windows := s.Fit().Transform(table)
	require.Len(t, windows, 5)
	for _, w := range windows {
		require.Len(t, w, 5)
		for _, row := range w {
			require.Len(t, row, 2)
		}
	}

	// Window 0 = rows [0,5), window 4 = rows [4,9).
	require.Equal(t, table.Rows[0], windows[0][0])
	require.Equal(t, table.Rows[4], windows[0][4])
	require.Equal(t, table.Rows[4], windows[4][0])
	require.Equal(t, table.Rows[8], windows[4][4])
}

func TestSelectorEmptyRange(t *testing.T) {
	table := makeTable(10, 2)

	s, err := NewSelector(0, 5, 5)
	require.NoError(t, err)
	require.Empty(t, s.Transform(table))

	s, err = NewSelector(4, 2, 3)
	require.NoError(t, err)
	require.Empty(t, s.Transform(table))
}

func TestSelectorInvalidConfig(t *testing.T) {
	_, err := NewSelector(0, 10, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "window width")

	_, err = NewSelector(-1, 10, 5)
	require.Error(t, err)

	_, err = NewSelector(0, -1, 5)
	require.Error(t, err)
}

func TestSelectorCopiesRows(t *testing.T) {
	table := makeTable(6, 2)
	s, err := NewSelector(0, 6, 3)
	require.NoError(t, err)

	windows := s.Transform(table)
	table.Rows[0][0] = -999
	require.Equal(t, 0.0, windows[0][0][0])
}

func TestSelectorClampsToTableEnd(t *testing.T) {
	table := makeTable(6, 2)
	s, err := NewSelector(0, 100, 3)
	require.NoError(t, err)

	windows := s.Transform(table)
	require.Len(t, windows, 4) // idx 3..6
	for _, w := range windows {
		require.Len(t, w, 3)
	}
}
