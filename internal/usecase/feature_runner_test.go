package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"TopoPull/internal/domain/models"
	"TopoPull/internal/services/tda"
	applogger "TopoPull/pkg/logger"
)

type fakeSource struct {
	table *models.Table
	err   error
}

func (s *fakeSource) Load(context.Context) (*models.Table, error) { return s.table, s.err }

type fakeStore struct {
	stored []models.FeatureRow
	err    error
}

func (s *fakeStore) StoreBatch(_ context.Context, rows []models.FeatureRow) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, rows...)
	return nil
}

func (s *fakeStore) GetRun(_ context.Context, runID string, _ int) ([]models.FeatureRow, error) {
	var out []models.FeatureRow
	for _, r := range s.stored {
		if r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) Health(context.Context) error { return nil }

type fakePublisher struct {
	published int
	err       error
}

func (p *fakePublisher) PublishBatch(_ context.Context, rows []models.FeatureRow) error {
	if p.err != nil {
		return p.err
	}
	p.published += len(rows)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeBroadcaster struct {
	got int
}

func (b *fakeBroadcaster) Broadcast(rows []models.FeatureRow) { b.got += len(rows) }

type nopMetrics struct{}

func (nopMetrics) RecordWindows(int)             {}
func (nopMetrics) RecordRows(string, int)        {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordLatency(string, float64) {}

func testPipeline(t *testing.T) *tda.Pipeline {
	t.Helper()
	sel, err := tda.NewSelector(0, 10, 5)
	require.NoError(t, err)
	comp, err := tda.NewComputer(tda.ComputerConfig{MaxHomologyDimension: 1})
	require.NoError(t, err)
	land, err := tda.NewLandscape(2, 10)
	require.NoError(t, err)
	return &tda.Pipeline{Selector: sel, Computer: comp, Landscape: land}
}

func testTable(rows int) *models.Table {
	t := &models.Table{Columns: []string{"x", "y"}}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, []float64{float64(i), float64(i * i)})
	}
	return t
}

func TestRunBatchDeliversToAllSinks(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	bcast := &fakeBroadcaster{}
	runner := NewFeatureRunner(
		&fakeSource{table: testTable(10)},
		nopMetrics{},
		applogger.Nop(),
		WithStore(store),
		WithPublisher(pub),
		WithBroadcaster(bcast),
	)

	summary, err := runner.RunBatch(context.Background(), testPipeline(t))
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)
	require.Equal(t, 5, summary.Windows)
	require.Equal(t, 2, summary.Dimensions)
	require.Equal(t, 10, summary.Rows)

	require.Len(t, store.stored, 10)
	require.Equal(t, 10, pub.published)
	require.Equal(t, 10, bcast.got)

	got, err := runner.GetRun(context.Background(), summary.RunID, 100)
	require.NoError(t, err)
	require.Len(t, got, 10)
}

func TestRunBatchSourceError(t *testing.T) {
	runner := NewFeatureRunner(
		&fakeSource{err: fmt.Errorf("boom")},
		nopMetrics{},
		applogger.Nop(),
	)
	_, err := runner.RunBatch(context.Background(), testPipeline(t))
	require.ErrorContains(t, err, "load table")
}

func TestRunTableStoreErrorFailsRun(t *testing.T) {
	runner := NewFeatureRunner(
		&fakeSource{},
		nopMetrics{},
		applogger.Nop(),
		WithStore(&fakeStore{err: fmt.Errorf("insert failed")}),
	)
	_, _, err := runner.RunTable(context.Background(), testPipeline(t), testTable(10))
	require.ErrorContains(t, err, "store rows")
}

func TestGetRunWithoutStore(t *testing.T) {
	runner := NewFeatureRunner(&fakeSource{}, nopMetrics{}, applogger.Nop())
	_, err := runner.GetRun(context.Background(), "x", 10)
	require.ErrorContains(t, err, "no feature store")
}

func TestRunBatchLogReturns(t *testing.T) {
	// 11 price rows become 10 return rows, which windows exactly like the
	// plain 10-row table.
	runner := NewFeatureRunner(
		&fakeSource{table: testTable(11)},
		nopMetrics{},
		applogger.Nop(),
		WithLogReturns(true),
	)
	summary, err := runner.RunBatch(context.Background(), testPipeline(t))
	require.NoError(t, err)
	require.Equal(t, 5, summary.Windows)
	require.Greater(t, summary.AnnualizedVol, 0.0)
}

func TestRunBatchWithoutLogReturnsHasNoVol(t *testing.T) {
	runner := NewFeatureRunner(
		&fakeSource{table: testTable(10)},
		nopMetrics{},
		applogger.Nop(),
	)
	summary, err := runner.RunBatch(context.Background(), testPipeline(t))
	require.NoError(t, err)
	require.Equal(t, 0.0, summary.AnnualizedVol)
}
