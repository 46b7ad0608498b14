// Package tda implements the topological feature pipeline: window
// selection, persistence computation, landscape sampling, and norm
// reduction. Every stage follows the same two-operation protocol — a
// no-op Fit kept for composition and a pure, deterministic Transform —
// and owns the structure it produces; no stage mutates its input.
package tda

import (
	"context"
	"fmt"
	"time"

	"TopoPull/internal/domain/models"
)

// Pipeline chains the four stages and flattens the output into one
// feature row per (window, homology dimension). Data flows strictly
// forward: table -> windows -> diagrams -> landscapes -> norms.
type Pipeline struct {
	Selector  *Selector
	Computer  *Computer
	Landscape *Landscape
	Norm      LPNorm
}

// Result is one completed run.
type Result struct {
	Rows       []models.FeatureRow
	Windows    int
	Dimensions int
}

// Run executes the pipeline over a table.
func (p *Pipeline) Run(ctx context.Context, runID string, table *models.Table) (*Result, error) {
	clouds := p.Selector.Fit().Transform(table)

	sets, err := p.Computer.Fit().Transform(ctx, clouds)
	if err != nil {
		return nil, fmt.Errorf("persistence batch: %w", err)
	}

	dims := p.Computer.Dimensions()
	now := time.Now().UTC()
	rows := make([]models.FeatureRow, 0, len(sets)*dims)
	landscape := p.Landscape.Fit()
	norm := p.Norm.Fit()
	for w, set := range sets {
		pairs := norm.Transform(landscape.Transform(set))
		for slot, np := range pairs {
			rows = append(rows, models.FeatureRow{
				RunID:       runID,
				WindowIndex: w,
				Dimension:   p.Computer.DimensionOf(slot),
				L1:          np.L1,
				L2:          np.L2,
				ComputedAt:  now,
			})
		}
	}

	return &Result{Rows: rows, Windows: len(sets), Dimensions: dims}, nil
}
