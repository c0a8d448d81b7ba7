// Package cart keeps per-user shopping carts. Carts live in Redis so the
// bot can restart without customers losing their selections.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tgshop/tgshop/internal/catalog"
	"github.com/tgshop/tgshop/internal/money"
)

var (
	ErrEmpty        = errors.New("cart is empty")
	ErrItemNotFound = errors.New("item not in cart")
)

// Item is a product line in a cart. Price is a snapshot taken when the item
// was added, so a later catalog price change does not reprice the cart.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Store is the persistence contract for carts.
type Store interface {
	Add(ctx context.Context, userID int64, item Item) error
	Decrease(ctx context.Context, userID int64, productID string) error
	Remove(ctx context.Context, userID int64, productID string) error
	Items(ctx context.Context, userID int64) ([]Item, error)
	Clear(ctx context.Context, userID int64) error
}

// Service resolves products against the catalog and manages cart contents.
type Service struct {
	store   Store
	catalog *catalog.Service
}

func NewService(store Store, cat *catalog.Service) *Service {
	return &Service{store: store, catalog: cat}
}

// Add puts one unit of the product into the user's cart, snapshotting the
// current price.
func (s *Service) Add(ctx context.Context, userID int64, productID string) (Item, error) {
	p, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return Item{}, err
	}
	item := Item{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1}
	if err := s.store.Add(ctx, userID, item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Remove drops one unit; the line disappears when quantity reaches zero.
func (s *Service) Remove(ctx context.Context, userID int64, productID string) error {
	return s.store.Decrease(ctx, userID, productID)
}

func (s *Service) Items(ctx context.Context, userID int64) ([]Item, error) {
	return s.store.Items(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.store.Clear(ctx, userID)
}

// Total sums the cart in minor units.
func Total(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// Summary renders the cart for a chat message.
func Summary(items []Item) string {
	if len(items) == 0 {
		return "Your cart is empty."
	}
	var b strings.Builder
	b.WriteString("Your cart:\n")
	for _, it := range items {
		fmt.Fprintf(&b, "- %s x%d  %s\n", it.Name, it.Quantity, money.Format(it.Price*int64(it.Quantity)))
	}
	fmt.Fprintf(&b, "\nTotal: %s", money.Format(Total(items)))
	return b.String()
}
