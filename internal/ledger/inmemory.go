package ledger

import (
	"context"
	"sync"
	"time"
)

type inMemoryLedger struct {
	mu     sync.RWMutex
	rows   []Record
	lastTS time.Time
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit
// tests and for running the bot without sheet credentials.
func NewInMemory() Ledger {
	return &inMemoryLedger{}
}

func (l *inMemoryLedger) Append(_ context.Context, rec Record) (Ack, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec.Timestamp = l.clampLocked(rec.Timestamp)
	l.rows = append(l.rows, rec)

	return Ack{Row: len(l.rows), AppendedAt: rec.Timestamp}, nil
}

func (l *inMemoryLedger) Rows(_ context.Context, filter Filter) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Record
	for _, r := range l.rows {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *inMemoryLedger) UpdateStatus(_ context.Context, orderID, status string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.rows {
		if l.rows[i].OrderID == orderID {
			l.rows[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

// clampLocked enforces the non-decreasing timestamp invariant. Caller holds l.mu.
func (l *inMemoryLedger) clampLocked(ts time.Time) time.Time {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if ts.Before(l.lastTS) {
		ts = l.lastTS
	}
	l.lastTS = ts
	return ts
}
