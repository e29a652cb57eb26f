package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/erazemk/zaloga/internal/model"
)

// Ledger is the append-only movement history, stored as a single JSON array.
// Every append reads the whole file, appends in memory and writes it back.
type Ledger struct {
	mu    sync.Mutex
	path  string
	now   func() time.Time
	hooks []func(model.Movement)
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithClock sets the clock used to stamp movements.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithAppendHook registers fn to be called after each successful append.
func WithAppendHook(fn func(model.Movement)) LedgerOption {
	return func(l *Ledger) { l.hooks = append(l.hooks, fn) }
}

// OpenLedger opens the ledger at path, creating an empty history if the file
// does not exist yet.
func OpenLedger(path string, opts ...LedgerOption) (*Ledger, error) {
	l := &Ledger{path: path, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}

	var existing []model.Movement
	found, err := readJSON(path, &existing)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if !found {
		if err := writeJSON(path, []model.Movement{}); err != nil {
			return nil, fmt.Errorf("creating ledger: %w", err)
		}
	}
	return l, nil
}

// Append adds one movement to the end of the history. A zero timestamp is
// replaced with the current time. Timestamps are kept at minute resolution.
func (l *Ledger) Append(m model.Movement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m.Timestamp.IsZero() {
		m.Timestamp = l.now()
	}
	m.Timestamp = m.Timestamp.Truncate(time.Minute)

	movements, err := l.load()
	if err != nil {
		return err
	}
	movements = append(movements, m)
	if err := writeJSON(l.path, movements); err != nil {
		return fmt.Errorf("saving ledger: %w", err)
	}

	for _, hook := range l.hooks {
		hook(m)
	}
	return nil
}

// List returns the complete history, oldest first.
func (l *Ledger) List() ([]model.Movement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// MovementFilter selects movements. Zero-valued fields match everything.
// From is inclusive and To is exclusive.
type MovementFilter struct {
	ItemID string
	Kind   model.MovementKind
	From   time.Time
	To     time.Time
}

func (f MovementFilter) match(m model.Movement) bool {
	if f.ItemID != "" && m.ItemID != f.ItemID {
		return false
	}
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	if !f.From.IsZero() && m.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !m.Timestamp.Before(f.To) {
		return false
	}
	return true
}

// Filter returns the movements matching f, oldest first.
func (l *Ledger) Filter(f MovementFilter) ([]model.Movement, error) {
	all, err := l.List()
	if err != nil {
		return nil, err
	}

	matched := make([]model.Movement, 0, len(all))
	for _, m := range all {
		if f.match(m) {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

func (l *Ledger) load() ([]model.Movement, error) {
	var movements []model.Movement
	if _, err := readJSON(l.path, &movements); err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	return movements, nil
}
