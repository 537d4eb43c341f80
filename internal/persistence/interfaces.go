// Package persistence defines the optional score history store. The run
// pipeline works without it; when configured, every run appends one row so
// the score trajectory can be inspected over time.
package persistence

import (
	"context"
	"encoding/json"
	"time"
)

// ScoreRow is one persisted scoring run.
type ScoreRow struct {
	RunID      string          `db:"run_id"`
	Score      float64         `db:"score"`
	Components json.RawMessage `db:"components"`
	CreatedAt  time.Time       `db:"created_at"`
}

// ScoreRepo stores and retrieves scoring runs.
type ScoreRepo interface {
	// Insert appends a run. Store failures are logged by the caller, never
	// fatal to the run itself.
	Insert(ctx context.Context, row ScoreRow) error
	// Latest returns the most recent run, or nil when the table is empty.
	Latest(ctx context.Context) (*ScoreRow, error)
}
