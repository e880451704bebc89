package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nvr-ai/go-anpr/benchmark"
)

// RunStore is a benchmark.RunStore backed by the anpr_runs table.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a store over db.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// SaveRun implements benchmark.RunStore.
func (s *RunStore) SaveRun(ctx context.Context, m benchmark.RunMetrics) error {
	query := `INSERT INTO anpr_runs
		(run_id, method, weather, image_path, expected, detected, processing_time_ms, false_positive, false_negative)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, query,
		m.RunID.String(), m.Method, m.Weather, m.ImagePath, m.Expected, m.Detected,
		float64(m.ProcessingTime.Nanoseconds())/1e6, m.FalsePositive, m.FalseNegative)
	if err != nil {
		return fmt.Errorf("RunStore.SaveRun: %w", err)
	}
	return nil
}

// Summary implements benchmark.RunStore.
func (s *RunStore) Summary(ctx context.Context, weather string) ([]benchmark.Summary, error) {
	query := `SELECT weather, method, COUNT(*), AVG(processing_time_ms),
			COUNT(*) FILTER (WHERE false_positive), COUNT(*) FILTER (WHERE false_negative)
		FROM anpr_runs
		WHERE ($1 = '' OR weather = $1)
		GROUP BY weather, method
		ORDER BY weather, method`

	rows, err := s.db.QueryContext(ctx, query, weather)
	if err != nil {
		return nil, fmt.Errorf("RunStore.Summary: %w", err)
	}
	defer rows.Close()

	var out []benchmark.Summary
	for rows.Next() {
		var (
			sum   benchmark.Summary
			avgMS float64
		)
		if err := rows.Scan(&sum.Weather, &sum.Method, &sum.Runs, &avgMS, &sum.FalsePositives, &sum.FalseNegatives); err != nil {
			return nil, fmt.Errorf("RunStore.Summary scan: %w", err)
		}
		sum.AvgProcessingTime = time.Duration(avgMS * float64(time.Millisecond))
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RunStore.Summary rows: %w", err)
	}
	return out, nil
}
