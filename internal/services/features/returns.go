// Package features holds input preprocessing applied before windowing.
package features

import (
	"math"

	"TopoPull/internal/domain/models"
)

// LogReturns converts a price table into a log-return table:
// r_t = ln(p_t / p_{t-1}) per column. The result has one row fewer and
// drops the first date. Non-positive prices produce a zero return.
func LogReturns(table *models.Table) *models.Table {
	if table.Len() < 2 {
		return &models.Table{Columns: table.Columns}
	}

	out := &models.Table{
		Columns: table.Columns,
		Rows:    make([][]float64, 0, table.Len()-1),
	}
	if len(table.Dates) == table.Len() {
		out.Dates = table.Dates[1:]
	}

	for i := 1; i < table.Len(); i++ {
		prev := table.Rows[i-1]
		cur := table.Rows[i]
		row := make([]float64, len(cur))
		for j := range cur {
			if prev[j] <= 0 || cur[j] <= 0 {
				continue
			}
			row[j] = math.Log(cur[j] / prev[j])
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// TableVolatility averages the annualized realized volatility of every
// column of a log-return table over its full history.
func TableVolatility(table *models.Table, barsPerYear float64) float64 {
	if table.Dim() == 0 || table.Len() < 2 {
		return 0
	}
	total := 0.0
	for j := 0; j < table.Dim(); j++ {
		col := make([]float64, table.Len())
		for i, row := range table.Rows {
			col[i] = row[j]
		}
		total += RealizedVolatility(col, len(col), barsPerYear)
	}
	return total / float64(table.Dim())
}

// RealizedVolatility computes the sample standard deviation of the most
// recent window of log returns, annualized with barsPerYear.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance * barsPerYear)
}
