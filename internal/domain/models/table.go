package models

import "time"

// Table is a date-indexed numeric matrix: one row per trading day, one
// column per asset series. Rows are assumed gapless and equal-length;
// resolving missing dates is the data supplier's job, not ours.
type Table struct {
	Dates   []time.Time
	Columns []string
	Rows    [][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Dim returns the number of columns, or 0 for an empty table.
func (t *Table) Dim() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// PointCloud is one time window materialized as points in R^d:
// rows are time steps, columns are assets.
type PointCloud [][]float64
