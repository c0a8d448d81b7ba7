// Package catalog holds the product list customers browse from the bot.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrInvalid  = errors.New("invalid product")
)

// Product is one sellable item. Price is in minor currency units (cents).
type Product struct {
	ID          string
	Name        string
	Description string
	Price       int64
	Category    string
	Brand       string
	Active      bool
	CreatedAt   time.Time
}

// Repository is the storage contract for products.
type Repository interface {
	Add(ctx context.Context, p Product) error
	Get(ctx context.Context, id string) (Product, error)
	ByCategory(ctx context.Context, category string) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)
	All(ctx context.Context) ([]Product, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// Service validates and creates products on top of a Repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the product, assigns it a short id and stores it.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Name == "" || p.Category == "" {
		return Product{}, ErrInvalid
	}
	if p.Price <= 0 {
		return Product{}, ErrInvalid
	}

	p.ID = NewProductID()
	p.Active = true
	p.CreatedAt = time.Now().UTC()

	if err := s.repo.Add(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.repo.Get(ctx, id)
}

// Browse returns the active products in a category, for the shop menu.
func (s *Service) Browse(ctx context.Context, category string) ([]Product, error) {
	products, err := s.repo.ByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	out := products[:0]
	for _, p := range products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Retire(ctx context.Context, id string) error {
	return s.repo.SetActive(ctx, id, false)
}

// NewProductID mints a short customer-facing product id, e.g. "p-1a2b3c4d".
func NewProductID() string {
	return "p-" + uuid.NewString()[:8]
}
