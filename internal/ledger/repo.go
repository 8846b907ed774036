package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
)

// Backend is a key/value store the ledger is persisted in.
type Backend interface {
	// Get returns the value for key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put overwrites the value for key.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Repo loads and saves the ledger under StorageKey.
type Repo struct {
	backend Backend
	logger  *zap.Logger
}

// NewRepo creates a Repo over backend. A nil logger disables logging.
func NewRepo(backend Backend, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{backend: backend, logger: logger}
}

// Load reads the persisted ledger. It never fails: a missing key, a
// backend error or unreadable data all yield an empty ledger.
func (r *Repo) Load(ctx context.Context) Ledger {
	data, found, err := r.backend.Get(ctx, StorageKey)
	if err != nil {
		r.logger.Warn("ledger read failed, starting empty", zap.Error(err))
		return New()
	}
	if !found {
		return New()
	}

	l, err := Decode(data)
	if err != nil {
		r.logger.Warn("ledger data unreadable, starting empty", zap.Error(err))
		return New()
	}
	return l
}

// Save overwrites the persisted ledger with l.
func (r *Repo) Save(ctx context.Context, l Ledger) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := r.backend.Put(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Clear removes the persisted ledger.
func (r *Repo) Clear(ctx context.Context) error {
	if err := r.backend.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	return nil
}

// Decode parses a persisted ledger. The data must be a JSON object;
// entries whose value is not a finite non-negative number are dropped,
// fractional streaks are truncated, and streaks at or past graduation are
// treated as graduated.
func Decode(data []byte) (Ledger, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("decode ledger: expected object, got null")
	}

	l := make(Ledger, len(obj))
	for id, v := range obj {
		if streak, ok := decodeStreak(v); ok {
			l[id] = streak
		}
	}
	return l, nil
}

// decodeStreak accepts a JSON number in [0, GraduationStreak), truncating
// fractions. Anything else, including numbers too large for a float64,
// is dropped on its own without failing the rest of the ledger.
func decodeStreak(v json.RawMessage) (int, bool) {
	s := string(bytes.TrimSpace(v))
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || n < 0 || n >= GraduationStreak {
		return 0, false
	}
	return int(n), true
}
