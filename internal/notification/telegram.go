package notification

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the slice of the Telegram client the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier delivers notifications through the Telegram Bot API.
type TelegramNotifier struct {
	api Sender
}

func NewTelegramNotifier(api Sender) *TelegramNotifier {
	return &TelegramNotifier{api: api}
}

func (n *TelegramNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := tgbotapi.NewMessage(msg.ChatID, msg.Body)
	if _, err := n.api.Send(out); err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	return nil
}

// FanOut sends the same body to every chat, continuing past individual
// failures and reporting the last error.
func FanOut(ctx context.Context, n Notifier, kind Kind, chatIDs []int64, body string) error {
	var last error
	for _, id := range chatIDs {
		if err := n.Send(ctx, Message{Kind: kind, ChatID: id, Body: body}); err != nil {
			last = err
		}
	}
	return last
}
