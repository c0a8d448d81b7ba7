// Package identity tracks the Telegram users who have talked to the bot.
// The roster backs admin broadcasts and order attribution.
package identity

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// User is a Telegram account that has interacted with the bot at least once.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// Repository stores the user roster. Upsert is called on every inbound
// message, so implementations must treat it as a cheap idempotent write.
type Repository interface {
	Upsert(ctx context.Context, u User) error
	Get(ctx context.Context, id int64) (User, error)
	All(ctx context.Context) ([]User, error)
}
