// Package postgres - PostgreSQL storage for the vehicle registry and benchmark runs.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/nvr-ai/go-anpr/config"
	pkgerrors "github.com/pkg/errors"
)

// uniqueViolation is the SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS vehicle_info (
	id SERIAL PRIMARY KEY,
	plate VARCHAR(20) UNIQUE NOT NULL,
	name VARCHAR(100),
	phone VARCHAR(15),
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS anpr_runs (
	id SERIAL PRIMARY KEY,
	run_id UUID NOT NULL,
	method VARCHAR(50) NOT NULL,
	weather VARCHAR(50) NOT NULL,
	image_path TEXT NOT NULL,
	expected VARCHAR(20),
	detected VARCHAR(20),
	processing_time_ms DOUBLE PRECISION NOT NULL,
	false_positive BOOLEAN NOT NULL,
	false_negative BOOLEAN NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Open connects to the database and verifies connectivity.
//
// The ping is retried cfg.ConnectRetries times, waiting cfg.ConnectBackoff
// between attempts. Queries issued later are never retried.
//
// Arguments:
//   - ctx: Context bounding the connection attempts.
//   - cfg: The database configuration.
//
// Returns:
//   - *sql.DB: The connection pool.
//   - error: An error if the database is unreachable.
func Open(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to open database")
	}

	if err := ping(ctx, db, cfg.ConnectRetries, cfg.ConnectBackoff); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ping(ctx context.Context, db *sql.DB, retries int, backoff time.Duration) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == retries {
			break
		}
		log.Printf("database ping failed (attempt %d/%d): %v", attempt+1, retries+1, err)
		select {
		case <-ctx.Done():
			return pkgerrors.Wrap(ctx.Err(), "database ping cancelled")
		case <-time.After(backoff):
		}
	}
	return pkgerrors.Wrap(err, "failed to ping database")
}

// Bootstrap creates the tables when they do not exist.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return pkgerrors.Wrap(err, "failed to create schema")
	}
	return nil
}

// isUniqueViolation reports whether err is a unique constraint violation from either driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
