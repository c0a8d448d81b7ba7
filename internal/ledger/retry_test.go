package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tgshop/tgshop/internal/config"
	"github.com/tgshop/tgshop/internal/logging"
)

// flakyLedger fails a fixed number of times before succeeding.
type flakyLedger struct {
	failures int
	failWith error
	calls    int
	inner    Ledger
}

func (f *flakyLedger) Append(ctx context.Context, rec Record) (Ack, error) {
	f.calls++
	if f.calls <= f.failures {
		return Ack{}, f.failWith
	}
	return f.inner.Append(ctx, rec)
}

func (f *flakyLedger) Rows(ctx context.Context, filter Filter) ([]Record, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.failWith
	}
	return f.inner.Rows(ctx, filter)
}

func (f *flakyLedger) UpdateStatus(ctx context.Context, orderID, status string) error {
	f.calls++
	if f.calls <= f.failures {
		return f.failWith
	}
	return f.inner.UpdateStatus(ctx, orderID, status)
}

func fastPolicy(attempts int) config.RetryPolicy {
	return config.RetryPolicy{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	flaky := &flakyLedger{failures: 2, failWith: ErrRemoteUnavailable, inner: NewInMemory()}
	l := WithRetry(flaky, fastPolicy(3), logging.Discard())

	ack, err := l.Append(context.Background(), Record{OrderID: "ORD-001"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if ack.Row != 1 {
		t.Fatalf("expected row 1, got %d", ack.Row)
	}
	if flaky.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", flaky.calls)
	}
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	flaky := &flakyLedger{failures: 10, failWith: ErrRemoteUnavailable, inner: NewInMemory()}
	l := WithRetry(flaky, fastPolicy(3), logging.Discard())

	_, err := l.Append(context.Background(), Record{OrderID: "ORD-001"})
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
	}
	if flaky.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", flaky.calls)
	}
}

func TestRetryDoesNotRetryAuthErrors(t *testing.T) {
	flaky := &flakyLedger{failures: 10, failWith: ErrAuth, inner: NewInMemory()}
	l := WithRetry(flaky, fastPolicy(3), logging.Discard())

	err := l.UpdateStatus(context.Background(), "ORD-001", "paid")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if flaky.calls != 1 {
		t.Fatalf("auth error must not be retried, got %d attempts", flaky.calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	flaky := &flakyLedger{failures: 10, failWith: ErrRemoteUnavailable, inner: NewInMemory()}
	l := WithRetry(flaky, config.RetryPolicy{
		MaxAttempts:    5,
		InitialBackoff: time.Hour,
		MaxBackoff:     time.Hour,
	}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Rows(ctx, Filter{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if flaky.calls != 1 {
		t.Fatalf("expected a single attempt before cancellation, got %d", flaky.calls)
	}
}
