package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tgshop/tgshop/internal/config"
)

type retryLedger struct {
	next   Ledger
	policy config.RetryPolicy
	logger *slog.Logger
}

// WithRetry decorates a ledger with the configured bounded-retry policy.
// Only ErrRemoteUnavailable is retried; auth rejections and context
// cancellation pass straight through.
func WithRetry(next Ledger, policy config.RetryPolicy, logger *slog.Logger) Ledger {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = 500 * time.Millisecond
	}
	if policy.MaxBackoff < policy.InitialBackoff {
		policy.MaxBackoff = policy.InitialBackoff
	}
	return &retryLedger{next: next, policy: policy, logger: logger}
}

func (r *retryLedger) Append(ctx context.Context, rec Record) (Ack, error) {
	var ack Ack
	err := r.do(ctx, "append", func() error {
		var err error
		ack, err = r.next.Append(ctx, rec)
		return err
	})
	return ack, err
}

func (r *retryLedger) Rows(ctx context.Context, filter Filter) ([]Record, error) {
	var rows []Record
	err := r.do(ctx, "rows", func() error {
		var err error
		rows, err = r.next.Rows(ctx, filter)
		return err
	})
	return rows, err
}

func (r *retryLedger) UpdateStatus(ctx context.Context, orderID, status string) error {
	return r.do(ctx, "update_status", func() error {
		return r.next.UpdateStatus(ctx, orderID, status)
	})
}

func (r *retryLedger) do(ctx context.Context, op string, call func() error) error {
	backoff := r.policy.InitialBackoff

	var err error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		err = call()
		if err == nil || !errors.Is(err, ErrRemoteUnavailable) {
			return err
		}
		if attempt == r.policy.MaxAttempts {
			break
		}

		r.logger.Warn("ledger call failed, retrying",
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.Any("error", err),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > r.policy.MaxBackoff {
			backoff = r.policy.MaxBackoff
		}
	}
	return err
}
