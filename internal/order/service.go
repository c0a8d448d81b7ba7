package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tgshop/tgshop/internal/cart"
	"github.com/tgshop/tgshop/internal/ledger"
	"github.com/tgshop/tgshop/internal/money"
	"github.com/tgshop/tgshop/internal/notification"
)

// Details is what the checkout conversation collects before placing an order.
type Details struct {
	Name          string
	Phone         string
	Address       string
	PaymentMethod string
}

var ErrInvalidPayment = errors.New("invalid payment method")

// Service places orders and drives status changes. The ledger write is best
// effort at checkout: the order is already persisted locally, so a ledger
// outage delays bookkeeping rather than losing the sale.
type Service struct {
	repo     Repository
	ledger   ledger.Ledger
	carts    *cart.Service
	notifier notification.Notifier
	logger   *slog.Logger

	adminIDs      []int64
	ledgerTimeout time.Duration
}

func NewService(
	repo Repository,
	led ledger.Ledger,
	carts *cart.Service,
	notifier notification.Notifier,
	logger *slog.Logger,
	adminIDs []int64,
	ledgerTimeout time.Duration,
) *Service {
	if ledgerTimeout <= 0 {
		ledgerTimeout = 10 * time.Second
	}
	return &Service{
		repo:          repo,
		ledger:        led,
		carts:         carts,
		notifier:      notifier,
		logger:        logger,
		adminIDs:      adminIDs,
		ledgerTimeout: ledgerTimeout,
	}
}

// Checkout turns the user's cart into a pending order. It returns the order
// and whether the ledger write landed; when it did not, the order still
// stands and the ledger row is owed.
func (s *Service) Checkout(ctx context.Context, userID int64, det Details) (Order, bool, error) {
	if det.PaymentMethod != PaymentBTC && det.PaymentMethod != PaymentCustom {
		return Order{}, false, ErrInvalidPayment
	}

	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return Order{}, false, err
	}
	if len(items) == 0 {
		return Order{}, false, cart.ErrEmpty
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return Order{}, false, err
	}

	seq, err := s.repo.NextSequence(ctx)
	if err != nil {
		return Order{}, false, err
	}

	o := Order{
		ID:            FormatID(seq),
		UserID:        userID,
		Name:          det.Name,
		Phone:         det.Phone,
		Address:       det.Address,
		ItemsJSON:     string(itemsJSON),
		Total:         cart.Total(items),
		Status:        StatusPending,
		PaymentMethod: det.PaymentMethod,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Order{}, false, err
	}

	ledgerOK := s.appendToLedger(ctx, o)

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Error("clear cart after checkout", slog.Int64("user_id", userID), slog.Any("error", err))
	}

	s.notifyAdmins(ctx, o)

	return o, ledgerOK, nil
}

// UpdateStatus moves an order to a new state, mirrors the change into the
// ledger and tells the customer.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return Order{}, err
	}
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return Order{}, err
	}

	lctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()
	if err := s.ledger.UpdateStatus(lctx, orderID, string(status)); err != nil {
		s.logger.Error("ledger status write-back failed",
			slog.String("order_id", orderID),
			slog.String("status", string(status)),
			slog.Any("error", err),
		)
	}

	msg := fmt.Sprintf("Your order %s is now %s.", o.ID, o.Status)
	if err := s.notifier.Send(ctx, notification.Message{
		Kind:   notification.KindStatusUpdate,
		ChatID: o.UserID,
		Body:   msg,
	}); err != nil {
		s.logger.Error("notify customer", slog.String("order_id", orderID), slog.Any("error", err))
	}

	return o, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, orderID string) (Order, error) {
	return s.repo.Get(ctx, orderID)
}

// History returns the user's orders, oldest first.
func (s *Service) History(ctx context.Context, userID int64) ([]Order, error) {
	return s.repo.ByUser(ctx, userID)
}

// LedgerRows exposes filtered ledger reads for the operator API.
func (s *Service) LedgerRows(ctx context.Context, filter ledger.Filter) ([]ledger.Record, error) {
	lctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()
	return s.ledger.Rows(lctx, filter)
}

func (s *Service) appendToLedger(ctx context.Context, o Order) bool {
	lctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()

	_, err := s.ledger.Append(lctx, ledger.Record{
		Timestamp:     o.CreatedAt,
		OrderID:       o.ID,
		UserID:        o.UserID,
		Name:          o.Name,
		Phone:         o.Phone,
		Address:       o.Address,
		ItemsJSON:     o.ItemsJSON,
		Total:         o.Total,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
	})
	if err != nil {
		s.logger.Error("ledger append failed",
			slog.String("order_id", o.ID),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

func (s *Service) notifyAdmins(ctx context.Context, o Order) {
	if len(s.adminIDs) == 0 {
		return
	}
	body := fmt.Sprintf(
		"New order %s\nCustomer: %s (%d)\nTotal: %s\nPayment: %s\nShip to: %s",
		o.ID, o.Name, o.UserID, money.Format(o.Total), o.PaymentMethod, o.Address,
	)
	if err := notification.FanOut(ctx, s.notifier, notification.KindNewOrder, s.adminIDs, body); err != nil {
		s.logger.Error("notify admins", slog.String("order_id", o.ID), slog.Any("error", err))
	}
}
