package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TopoPull/internal/domain/models"
	domrepo "TopoPull/internal/domain/repository"
	pkgch "TopoPull/pkg/clickhouse"
)

// CHFeatureStore implements FeatureStore backed by ClickHouse.
type CHFeatureStore struct {
	db    *sql.DB
	table string
}

// NewCHFeatureStore creates a ClickHouse-backed feature store.
func NewCHFeatureStore(ch *pkgch.Client, table string) domrepo.FeatureStore {
	if table == "" {
		table = "tda_features"
	}
	return &CHFeatureStore{db: ch.DB(), table: table}
}

// SchemaStatements returns idempotent DDL for the feature table,
// for use with clickhouse.Client.InitSchema.
func SchemaStatements(database, table string) []string {
	if table == "" {
		table = "tda_features"
	}
	qualified := table
	if database != "" {
		qualified = database + "." + table
	}
	stmts := []string{}
	if database != "" {
		stmts = append(stmts, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database))
	}
	stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id String,
	window_idx UInt32,
	dim UInt8,
	l1 Float64,
	l2 Float64,
	computed_at DateTime64(3)
) ENGINE = MergeTree()
ORDER BY (run_id, window_idx, dim)`, qualified))
	return stmts
}

func (s *CHFeatureStore) StoreBatch(ctx context.Context, rows []models.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, r := range rows[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				r.RunID,
				uint32(r.WindowIndex),
				uint8(r.Dimension),
				r.L1,
				r.L2,
				r.ComputedAt,
			)
		}
		q := fmt.Sprintf("INSERT INTO %s (run_id, window_idx, dim, l1, l2, computed_at) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store features: %w", err)
		}
	}
	return nil
}

func (s *CHFeatureStore) GetRun(ctx context.Context, runID string, limit int) ([]models.FeatureRow, error) {
	if limit <= 0 {
		limit = 1000
	}
	q := fmt.Sprintf(`SELECT run_id, window_idx, dim, l1, l2, computed_at
FROM %s WHERE run_id = ? ORDER BY window_idx, dim LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(ctx, q, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []models.FeatureRow
	for rows.Next() {
		var (
			r         models.FeatureRow
			windowIdx uint32
			dim       uint8
			at        time.Time
		)
		if err := rows.Scan(&r.RunID, &windowIdx, &dim, &r.L1, &r.L2, &at); err != nil {
			return nil, err
		}
		r.WindowIndex = int(windowIdx)
		r.Dimension = int(dim)
		r.ComputedAt = at
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *CHFeatureStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
