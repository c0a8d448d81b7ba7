// Package session tracks the multi-step checkout conversation per user.
// Sessions expire on inactivity so an abandoned checkout does not trap the
// user in conversation mode.
package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("no active session")

// Stage is the next question the checkout conversation will ask.
type Stage string

const (
	StageName    Stage = "name"
	StagePhone   Stage = "phone"
	StageAddress Stage = "address"
	StagePayment Stage = "payment"
)

// Checkout is the in-progress checkout state for one user.
type Checkout struct {
	Stage     Stage     `json:"stage"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists checkout sessions. Get returns ErrNotFound for absent or
// expired sessions.
type Store interface {
	Get(ctx context.Context, userID int64) (Checkout, error)
	Put(ctx context.Context, userID int64, c Checkout) error
	Delete(ctx context.Context, userID int64) error
}
