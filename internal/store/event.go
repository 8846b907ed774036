package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// sequenceCounter numbers answer and session events from one counter so
// a session's start, its answers and its end sort in the order they
// happened even though they live in two tables.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

const sequenceSchema = `CREATE TABLE IF NOT EXISTS event_sequence (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	next_val INTEGER NOT NULL
)`

func newSequenceCounter(ctx context.Context, db *sql.DB) (*sequenceCounter, error) {
	// Databases that already hold events continue after the highest one.
	_, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO event_sequence (id, next_val)
		SELECT 1, COALESCE(MAX(sequence), 0) + 1 FROM (
			SELECT sequence FROM answer_events UNION ALL SELECT sequence FROM session_events
		)`)
	if err != nil {
		return nil, fmt.Errorf("seed event sequence: %w", err)
	}
	return &sequenceCounter{db: db}, nil
}

// Next reserves one sequence number. RETURNING keeps the read and the
// increment in one statement; the mutex keeps callers in this process
// from interleaving.
func (c *sequenceCounter) Next(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	err := c.db.QueryRowContext(ctx,
		`UPDATE event_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("reserve event sequence: %w", err)
	}
	return n, nil
}
