// Package usecase wires the pipeline stages to sources and sinks.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"TopoPull/internal/domain/models"
	domrepo "TopoPull/internal/domain/repository"
	"TopoPull/internal/services/features"
	"TopoPull/internal/services/tda"
	applogger "TopoPull/pkg/logger"
)

// FeatureRunner executes pipeline runs and fans the resulting feature
// rows out to the configured sinks. Store and publisher failures fail
// the run; the live stream is best-effort.
type FeatureRunner struct {
	source  domrepo.TableSource
	store   domrepo.FeatureStore
	pub     domrepo.Publisher
	bcast   domrepo.Broadcaster
	metrics domrepo.Metrics
	l       *applogger.Logger

	logReturns bool
}

// RunnerOption configures FeatureRunner.
type RunnerOption func(*FeatureRunner)

// WithStore attaches a feature store sink.
func WithStore(s domrepo.FeatureStore) RunnerOption {
	return func(r *FeatureRunner) { r.store = s }
}

// WithPublisher attaches a message broker sink.
func WithPublisher(p domrepo.Publisher) RunnerOption {
	return func(r *FeatureRunner) { r.pub = p }
}

// WithBroadcaster attaches a live stream sink.
func WithBroadcaster(b domrepo.Broadcaster) RunnerOption {
	return func(r *FeatureRunner) { r.bcast = b }
}

// WithLogReturns converts the loaded price table to log returns before
// windowing.
func WithLogReturns(enabled bool) RunnerOption {
	return func(r *FeatureRunner) { r.logReturns = enabled }
}

// NewFeatureRunner creates a runner over the given table source.
func NewFeatureRunner(source domrepo.TableSource, metrics domrepo.Metrics, l *applogger.Logger, opts ...RunnerOption) *FeatureRunner {
	r := &FeatureRunner{source: source, metrics: metrics, l: l}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunBatch loads the configured input table and runs the pipeline on it.
func (r *FeatureRunner) RunBatch(ctx context.Context, pipe *tda.Pipeline) (*models.RunSummary, error) {
	table, err := r.source.Load(ctx)
	if err != nil {
		r.metrics.RecordError("source")
		return nil, fmt.Errorf("load table: %w", err)
	}
	if r.logReturns {
		table = features.LogReturns(table)
	}
	summary, _, err := r.RunTable(ctx, pipe, table)
	if err != nil {
		return nil, err
	}
	if r.logReturns {
		summary.AnnualizedVol = features.TableVolatility(table, tradingDaysPerYear)
	}
	return summary, nil
}

const tradingDaysPerYear = 252

// RunTable runs the pipeline on an explicit table, delivers the rows to
// the sinks, and returns them alongside the run summary.
func (r *FeatureRunner) RunTable(ctx context.Context, pipe *tda.Pipeline, table *models.Table) (*models.RunSummary, []models.FeatureRow, error) {
	runID := uuid.NewString()
	started := time.Now()

	r.l.Info("pipeline run started",
		applogger.String("run_id", runID),
		applogger.Int("rows", table.Len()),
		applogger.Int("columns", table.Dim()),
	)

	result, err := pipe.Run(ctx, runID, table)
	if err != nil {
		r.metrics.RecordError("pipeline")
		return nil, nil, err
	}
	r.metrics.RecordLatency("pipeline_run", time.Since(started).Seconds())

	if err := r.deliver(ctx, result.Rows); err != nil {
		return nil, nil, err
	}

	summary := &models.RunSummary{
		RunID:      runID,
		Windows:    result.Windows,
		Dimensions: result.Dimensions,
		Rows:       len(result.Rows),
		StartedAt:  started.UTC(),
		Duration:   time.Since(started).Round(time.Millisecond).String(),
	}
	r.l.Info("pipeline run finished",
		applogger.String("run_id", runID),
		applogger.Int("windows", summary.Windows),
		applogger.Int("rows", summary.Rows),
		applogger.String("duration", summary.Duration),
	)
	return summary, result.Rows, nil
}

// Close releases sink resources.
func (r *FeatureRunner) Close() error {
	if r.pub != nil {
		return r.pub.Close()
	}
	return nil
}

// GetRun fetches stored rows for a past run.
func (r *FeatureRunner) GetRun(ctx context.Context, runID string, limit int) ([]models.FeatureRow, error) {
	if r.store == nil {
		return nil, fmt.Errorf("no feature store configured")
	}
	return r.store.GetRun(ctx, runID, limit)
}

func (r *FeatureRunner) deliver(ctx context.Context, rows []models.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	if r.store != nil {
		start := time.Now()
		if err := r.store.StoreBatch(ctx, rows); err != nil {
			r.metrics.RecordError("store")
			return fmt.Errorf("store rows: %w", err)
		}
		r.metrics.RecordRows("clickhouse", len(rows))
		r.metrics.RecordLatency("store_batch", time.Since(start).Seconds())
	}

	if r.pub != nil {
		start := time.Now()
		if err := r.pub.PublishBatch(ctx, rows); err != nil {
			r.metrics.RecordError("publish")
			return fmt.Errorf("publish rows: %w", err)
		}
		r.metrics.RecordRows("kafka", len(rows))
		r.metrics.RecordLatency("publish_batch", time.Since(start).Seconds())
	}

	if r.bcast != nil {
		r.bcast.Broadcast(rows)
		r.metrics.RecordRows("stream", len(rows))
	}
	return nil
}
