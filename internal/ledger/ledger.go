package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRemoteUnavailable indicates a transient transport failure talking to
	// the remote store. Callers may retry within their configured policy.
	ErrRemoteUnavailable = errors.New("ledger remote unavailable")

	// ErrAuth indicates the remote store rejected our credentials. The call is
	// not retryable; the operator has to fix the service account.
	ErrAuth = errors.New("ledger authentication rejected")

	// ErrNotFound indicates the requested order row does not exist in the ledger.
	ErrNotFound = errors.New("ledger row not found")
)

// TimeFormat is the cell format used for the Date column.
const TimeFormat = "2006-01-02 15:04:05"

// Record is one logged order event. Records are append-only: once written
// they are never deleted, and only the Status column is ever updated.
type Record struct {
	Timestamp     time.Time
	OrderID       string
	UserID        int64
	Name          string
	Phone         string
	Address       string
	ItemsJSON     string
	Total         int64
	Status        string
	PaymentMethod string
}

// Ack confirms a successful append.
type Ack struct {
	Row        int
	AppendedAt time.Time
}

// Filter narrows Rows results. Zero values match everything, so re-querying
// with the same filter is safe and idempotent.
type Filter struct {
	OrderID string
	UserID  int64
}

// Matches reports whether the record satisfies the filter.
func (f Filter) Matches(r Record) bool {
	if f.OrderID != "" && f.OrderID != r.OrderID {
		return false
	}
	if f.UserID != 0 && f.UserID != r.UserID {
		return false
	}
	return true
}

// Ledger is the contract implemented by order-ledger backends (Google Sheets
// in production, in-memory for tests and credential-less development).
// Timestamps are monotonically non-decreasing per append; backends clamp
// out-of-order inputs rather than reject them.
type Ledger interface {
	Append(ctx context.Context, rec Record) (Ack, error)
	Rows(ctx context.Context, filter Filter) ([]Record, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
}
