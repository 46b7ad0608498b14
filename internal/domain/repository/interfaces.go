package repository

import (
	"context"

	"TopoPull/internal/domain/models"
)

// TableSource supplies the input time series table. The pipeline assumes
// the table invariants (no missing rows, equal-length rows) hold;
// enforcing them is the supplier's job.
type TableSource interface {
	Load(ctx context.Context) (*models.Table, error)
}

// FeatureStore persists computed feature rows.
type FeatureStore interface {
	StoreBatch(ctx context.Context, rows []models.FeatureRow) error
	GetRun(ctx context.Context, runID string, limit int) ([]models.FeatureRow, error)
	Health(ctx context.Context) error
}

// Publisher pushes feature rows to downstream consumers.
type Publisher interface {
	PublishBatch(ctx context.Context, rows []models.FeatureRow) error
	Close() error
}

// Broadcaster fans completed rows out to live subscribers.
type Broadcaster interface {
	Broadcast(rows []models.FeatureRow)
}

// Metrics abstracts the metrics recorder.
type Metrics interface {
	RecordWindows(n int)
	RecordRows(sink string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
