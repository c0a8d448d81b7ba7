// Package notification delivers out-of-band messages: new-order alerts to
// admins, status updates to customers and operator broadcasts.
package notification

import (
	"context"
	"log/slog"
)

// Kind classifies a notification so senders can route or suppress it.
type Kind string

const (
	KindNewOrder     Kind = "new_order"
	KindStatusUpdate Kind = "status_update"
	KindBroadcast    Kind = "broadcast"
)

// Message is one notification to one chat.
type Message struct {
	Kind   Kind
	ChatID int64
	Body   string
}

// Notifier delivers a message. Implementations must not block the caller
// indefinitely; delivery failures are returned, never panicked.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LoggerNotifier writes notifications to the log instead of a chat. Used in
// tests and when the bot runs without a Telegram token.
type LoggerNotifier struct {
	logger *slog.Logger
}

func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

func (n *LoggerNotifier) Send(_ context.Context, msg Message) error {
	n.logger.Info("notification",
		slog.String("kind", string(msg.Kind)),
		slog.Int64("chat_id", msg.ChatID),
		slog.String("body", msg.Body),
	)
	return nil
}
