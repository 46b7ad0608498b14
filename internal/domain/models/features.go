package models

import "time"

// NormPair holds the L1/L2 norms of one landscape vector.
type NormPair struct {
	L1 float64 `json:"l1"`
	L2 float64 `json:"l2"`
}

// FeatureRow is one output feature: the landscape norms of a single
// (window, homology dimension) persistence diagram.
type FeatureRow struct {
	RunID       string    `json:"run_id"`
	WindowIndex int       `json:"window_index"`
	Dimension   int       `json:"dimension"`
	L1          float64   `json:"l1"`
	L2          float64   `json:"l2"`
	ComputedAt  time.Time `json:"computed_at"`
}

// RunSummary describes a completed pipeline run. AnnualizedVol is only
// populated when the input was converted to log returns.
type RunSummary struct {
	RunID         string    `json:"run_id"`
	Windows       int       `json:"windows"`
	Dimensions    int       `json:"dimensions"`
	Rows          int       `json:"rows"`
	AnnualizedVol float64   `json:"annualized_vol,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	Duration      string    `json:"duration"`
}
