// Package bot runs the Telegram front end: it polls for updates, routes
// slash commands and drives the checkout conversation.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tgshop/tgshop/internal/cart"
	"github.com/tgshop/tgshop/internal/catalog"
	"github.com/tgshop/tgshop/internal/command"
	"github.com/tgshop/tgshop/internal/identity"
	"github.com/tgshop/tgshop/internal/ledger"
	"github.com/tgshop/tgshop/internal/order"
	"github.com/tgshop/tgshop/internal/session"
	"github.com/tgshop/tgshop/internal/wallet"
)

// API is the slice of *tgbotapi.BotAPI the bot uses, split out so tests can
// run the message flow without a live token.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot wires the services behind the Telegram chat surface.
type Bot struct {
	api      API
	router   *command.Router
	sessions session.Store
	carts    *cart.Service
	catalog  *catalog.Service
	orders   *order.Service
	wallet   *wallet.Issuer
	users    identity.Repository
	logger   *slog.Logger
}

func New(
	api API,
	sessions session.Store,
	carts *cart.Service,
	cat *catalog.Service,
	orders *order.Service,
	w *wallet.Issuer,
	users identity.Repository,
	logger *slog.Logger,
) *Bot {
	b := &Bot{
		api:      api,
		router:   command.NewRouter(),
		sessions: sessions,
		carts:    carts,
		catalog:  cat,
		orders:   orders,
		wallet:   w,
		users:    users,
		logger:   logger,
	}
	b.registerRoutes()
	return b
}

// Run polls Telegram until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	reply := b.Process(ctx, Inbound{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Text:      msg.Text,
	})
	if reply == "" {
		return
	}

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("send reply", slog.Int64("chat_id", msg.Chat.ID), slog.Any("error", err))
	}
}

// Inbound is one incoming chat message, flattened for processing.
type Inbound struct {
	UserID    int64
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	Text      string
}

// Process turns one inbound message into the reply text. An active checkout
// session consumes plain text; slash commands always go through the router,
// so /cancel works mid-conversation.
func (b *Bot) Process(ctx context.Context, in Inbound) string {
	if err := b.users.Upsert(ctx, identity.User{
		ID:        in.UserID,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}); err != nil {
		b.logger.Error("upsert user", slog.Int64("user_id", in.UserID), slog.Any("error", err))
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return ""
	}

	if strings.HasPrefix(text, "/") {
		return b.dispatch(ctx, in, text)
	}

	sess, err := b.sessions.Get(ctx, in.UserID)
	if err == nil {
		return b.advanceCheckout(ctx, in.UserID, text, sess)
	}
	if !errors.Is(err, session.ErrNotFound) {
		b.logger.Error("load session", slog.Int64("user_id", in.UserID), slog.Any("error", err))
		return "Something went wrong, please try again."
	}

	return "I only understand commands. Try /help."
}

func (b *Bot) dispatch(ctx context.Context, in Inbound, text string) string {
	cmd, args := parseCommand(text)
	req := command.Request{
		Command:   cmd,
		Args:      args,
		UserID:    in.UserID,
		Username:  in.Username,
		FirstName: in.FirstName,
	}

	reply, err := b.router.Dispatch(ctx, req)
	if err != nil {
		return b.errorReply(cmd, err)
	}
	return reply.Text
}

func (b *Bot) errorReply(cmd command.Command, err error) string {
	switch {
	case errors.Is(err, command.ErrUnknownCommand):
		return "Unknown command: " + string(cmd)
	case errors.Is(err, command.ErrInvalidArguments):
		if usage := b.router.Usage(cmd); usage != "" {
			return "Usage: " + usage
		}
		return "That doesn't look right. Try /help."
	case errors.Is(err, catalog.ErrNotFound):
		return "Product not found."
	case errors.Is(err, cart.ErrItemNotFound):
		return "That item is not in your cart."
	case errors.Is(err, cart.ErrEmpty):
		return "Your cart is empty."
	case errors.Is(err, order.ErrNotFound):
		return "Order not found."
	case errors.Is(err, ledger.ErrRemoteUnavailable), errors.Is(err, ledger.ErrAuth):
		return "The order book is unavailable right now. Please try again later."
	default:
		b.logger.Error("command failed", slog.String("command", string(cmd)), slog.Any("error", err))
		return "Something went wrong, please try again."
	}
}

// parseCommand splits "/add@ShopBot p-1a2b3c4d" into (add, [p-1a2b3c4d]).
func parseCommand(text string) (command.Command, []string) {
	fields := strings.Fields(text)
	head := strings.TrimPrefix(fields[0], "/")
	if at := strings.Index(head, "@"); at >= 0 {
		head = head[:at]
	}
	return command.Command(strings.ToLower(head)), fields[1:]
}
