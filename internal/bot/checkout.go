package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tgshop/tgshop/internal/money"
	"github.com/tgshop/tgshop/internal/order"
	"github.com/tgshop/tgshop/internal/session"
)

// advanceCheckout consumes one answer in the checkout conversation and asks
// the next question, placing the order after the final stage.
func (b *Bot) advanceCheckout(ctx context.Context, userID int64, text string, sess session.Checkout) string {
	switch sess.Stage {
	case session.StageName:
		sess.Name = text
		sess.Stage = session.StagePhone
		if err := b.sessions.Put(ctx, userID, sess); err != nil {
			return b.checkoutStoreFailure(userID, err)
		}
		return "Thanks. What phone number can we reach you on?"

	case session.StagePhone:
		sess.Phone = text
		sess.Stage = session.StageAddress
		if err := b.sessions.Put(ctx, userID, sess); err != nil {
			return b.checkoutStoreFailure(userID, err)
		}
		return "Got it. What's the delivery address?"

	case session.StageAddress:
		sess.Address = text
		sess.Stage = session.StagePayment
		if err := b.sessions.Put(ctx, userID, sess); err != nil {
			return b.checkoutStoreFailure(userID, err)
		}
		return "Almost done. How will you pay? Reply \"btc\" or \"custom\"."

	case session.StagePayment:
		method := strings.ToLower(strings.TrimSpace(text))
		if method != order.PaymentBTC && method != order.PaymentCustom {
			return "Please reply \"btc\" or \"custom\"."
		}
		return b.placeOrder(ctx, userID, sess, method)

	default:
		// Unknown stage means a stale session from an older version; drop it.
		if err := b.sessions.Delete(ctx, userID); err != nil {
			b.logger.Error("delete stale session", slog.Int64("user_id", userID), slog.Any("error", err))
		}
		return "Your checkout session expired. Start again with /checkout."
	}
}

func (b *Bot) placeOrder(ctx context.Context, userID int64, sess session.Checkout, method string) string {
	o, ledgerOK, err := b.orders.Checkout(ctx, userID, order.Details{
		Name:          sess.Name,
		Phone:         sess.Phone,
		Address:       sess.Address,
		PaymentMethod: method,
	})
	if err != nil {
		b.logger.Error("checkout failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return "Placing your order failed. Your cart is untouched; please try /checkout again."
	}

	if err := b.sessions.Delete(ctx, userID); err != nil {
		b.logger.Error("delete session after checkout", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Order %s placed! Total: %s\n", o.ID, money.Format(o.Total))
	if method == order.PaymentBTC {
		sb.WriteString("\n")
		sb.WriteString(b.wallet.PaymentInstructions(o.ID, o.Total))
		sb.WriteString("\n")
	} else {
		sb.WriteString("\nWe'll contact you about payment shortly.\n")
	}
	if !ledgerOK {
		sb.WriteString("\nNote: order tracking is catching up; your order is safe and recorded.")
	}
	return sb.String()
}

func (b *Bot) checkoutStoreFailure(userID int64, err error) string {
	b.logger.Error("save session", slog.Int64("user_id", userID), slog.Any("error", err))
	return "Something went wrong, please try again."
}
