package tda

import (
	"fmt"

	"TopoPull/internal/domain/models"
)

// Selector slices a date-indexed table into overlapping fixed-width
// windows, each materialized as a point cloud (rows = time steps,
// columns = assets). It is the leaf stage of the pipeline: stateless,
// pure, no dependencies.
type Selector struct {
	start  int
	end    int
	window int
}

// NewSelector validates the index range. end <= start+window is a legal
// boundary condition (the selector then produces no windows), but a
// non-positive width or negative bound is a configuration error.
func NewSelector(start, end, window int) (*Selector, error) {
	if window < 1 {
		return nil, fmt.Errorf("selector: window width must be >= 1, got %d", window)
	}
	if start < 0 {
		return nil, fmt.Errorf("selector: start index must be >= 0, got %d", start)
	}
	if end < 0 {
		return nil, fmt.Errorf("selector: end index must be >= 0, got %d", end)
	}
	return &Selector{start: start, end: end, window: window}, nil
}

// Fit is a no-op kept for pipeline composition.
func (s *Selector) Fit() *Selector { return s }

// Transform emits, for each idx in [start+window, end), the point cloud
// of rows [idx-window, idx). Rows are copied so windows stay immutable
// once produced. Windows that would run past the end of the table are
// not produced.
func (s *Selector) Transform(table *models.Table) []models.PointCloud {
	limit := s.end
	if m := table.Len() + 1; limit > m {
		limit = m
	}
	first := s.start + s.window
	if limit <= first {
		return []models.PointCloud{}
	}

	out := make([]models.PointCloud, 0, limit-first)
	for idx := first; idx < limit; idx++ {
		cloud := make(models.PointCloud, s.window)
		for r := 0; r < s.window; r++ {
			cloud[r] = append([]float64(nil), table.Rows[idx-s.window+r]...)
		}
		out = append(out, cloud)
	}
	return out
}
