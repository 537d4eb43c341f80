// Package postgres implements the score history store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ddellaringa6/btis/internal/persistence"
)

// scoreRepo implements persistence.ScoreRepo on PostgreSQL via sqlx.
type scoreRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewScoreRepo wraps an sqlx handle as a score repository.
func NewScoreRepo(db *sqlx.DB, timeout time.Duration) persistence.ScoreRepo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &scoreRepo{db: db, timeout: timeout}
}

// Connect opens a PostgreSQL handle and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the scores table when missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS btis_scores (
			run_id     TEXT PRIMARY KEY,
			score      DOUBLE PRECISION NOT NULL,
			components JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create btis_scores table: %w", err)
	}
	return nil
}

// Insert appends one scoring run.
func (r *scoreRepo) Insert(ctx context.Context, row persistence.ScoreRow) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		INSERT INTO btis_scores (run_id, score, components, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := r.db.ExecContext(ctx, query,
		row.RunID, row.Score, row.Components, row.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert score row: %w", err)
	}
	return nil
}

// Latest returns the most recent scoring run, or nil when none exist.
func (r *scoreRepo) Latest(ctx context.Context) (*persistence.ScoreRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		SELECT run_id, score, components, created_at
		FROM btis_scores
		ORDER BY created_at DESC
		LIMIT 1`

	var row persistence.ScoreRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest score: %w", err)
	}
	return &row, nil
}
