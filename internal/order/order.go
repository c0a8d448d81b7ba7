// Package order creates orders from carts and tracks their lifecycle. Every
// order is mirrored into the ledger; the local repository is the fast path
// the bot reads from.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// Status is the order lifecycle state. Orders start pending and move
// forward when an admin updates them.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentMethod selects how the customer pays.
const (
	PaymentBTC    = "btc"
	PaymentCustom = "custom"
)

// Order is one placed order.
type Order struct {
	ID            string
	UserID        int64
	Name          string
	Phone         string
	Address       string
	ItemsJSON     string
	Total         int64
	Status        Status
	PaymentMethod string
	CreatedAt     time.Time
}

// FormatID renders the customer-facing order id from a sequence number.
func FormatID(seq int64) string {
	return fmt.Sprintf("ORD-%03d", seq)
}

// Repository stores orders locally. NextSequence hands out the number behind
// the ORD-NNN id and must never repeat.
type Repository interface {
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, error)
	ByUser(ctx context.Context, userID int64) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	NextSequence(ctx context.Context) (int64, error)
}
