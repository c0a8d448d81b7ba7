// Package ops is the operator-facing HTTP surface: health checks, order
// management, product management and broadcasts. Customers never touch it;
// the bot is their only interface.
package ops

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tgshop/tgshop/internal/catalog"
	"github.com/tgshop/tgshop/internal/config"
	"github.com/tgshop/tgshop/internal/identity"
	"github.com/tgshop/tgshop/internal/notification"
	"github.com/tgshop/tgshop/internal/order"
)

// Deps aggregates everything the operator API needs.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Orders   *order.Service
	Catalog  *catalog.Service
	Users    identity.Repository
	Notifier notification.Notifier
}

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to Setup.
func New(d Deps) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      d.Cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	if err := Setup(app, d); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: d.Cfg}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
