package ops

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tgshop/tgshop/internal/catalog"
	"github.com/tgshop/tgshop/internal/ledger"
	"github.com/tgshop/tgshop/internal/middleware"
	"github.com/tgshop/tgshop/internal/notification"
	"github.com/tgshop/tgshop/internal/order"
)

// Setup configures middlewares and all operator routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Orders == nil || d.Catalog == nil || d.Users == nil || d.Notifier == nil {
		return errors.New("ops: missing service dependencies")
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1", middleware.AdminAuth(d.Cfg.AdminTokenHash))

	api.Get("/orders", listOrders(d))
	api.Post("/orders/:orderID/status", updateOrderStatus(d))
	api.Post("/products", createProduct(d))
	api.Delete("/products/:productID", retireProduct(d))
	api.Post("/broadcast", broadcast(d))

	return nil
}

func listOrders(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := ledger.Filter{OrderID: c.Query("order_id")}
		if raw := c.Query("user_id"); raw != "" {
			uid, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fiber.NewError(http.StatusBadRequest, "user_id must be numeric")
			}
			filter.UserID = uid
		}

		rows, err := d.Orders.LedgerRows(c.UserContext(), filter)
		if err != nil {
			return ledgerError(err)
		}

		out := make([]fiber.Map, 0, len(rows))
		for _, r := range rows {
			out = append(out, fiber.Map{
				"order_id":       r.OrderID,
				"user_id":        r.UserID,
				"name":           r.Name,
				"total":          r.Total,
				"status":         r.Status,
				"payment_method": r.PaymentMethod,
				"date":           r.Timestamp.Format(ledger.TimeFormat),
			})
		}
		return c.JSON(fiber.Map{"orders": out})
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func updateOrderStatus(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid body")
		}

		o, err := d.Orders.UpdateStatus(c.UserContext(), c.Params("orderID"), order.Status(req.Status))
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			return fiber.NewError(http.StatusUnprocessableEntity, "invalid status")
		case errors.Is(err, order.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "order not found")
		case err != nil:
			return err
		}

		return c.JSON(fiber.Map{
			"order_id": o.ID,
			"status":   o.Status,
		})
	}
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	Brand       string `json:"brand"`
}

func createProduct(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req productRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid body")
		}

		p, err := d.Catalog.Create(c.UserContext(), catalog.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Category:    req.Category,
			Brand:       req.Brand,
		})
		if errors.Is(err, catalog.ErrInvalid) {
			return fiber.NewError(http.StatusUnprocessableEntity, "invalid product")
		}
		if err != nil {
			return err
		}

		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"id":       p.ID,
			"name":     p.Name,
			"price":    p.Price,
			"category": p.Category,
		})
	}
}

func retireProduct(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := d.Catalog.Retire(c.UserContext(), c.Params("productID"))
		if errors.Is(err, catalog.ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return err
		}
		return c.SendStatus(http.StatusNoContent)
	}
}

type broadcastRequest struct {
	Message string `json:"message"`
}

func broadcast(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req broadcastRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid body")
		}
		if strings.TrimSpace(req.Message) == "" {
			return fiber.NewError(http.StatusUnprocessableEntity, "message is required")
		}

		users, err := d.Users.All(c.UserContext())
		if err != nil {
			return err
		}

		delivered := 0
		for _, u := range users {
			err := d.Notifier.Send(c.UserContext(), notification.Message{
				Kind:   notification.KindBroadcast,
				ChatID: u.ID,
				Body:   req.Message,
			})
			if err == nil {
				delivered++
			}
		}

		return c.JSON(fiber.Map{
			"recipients": len(users),
			"delivered":  delivered,
		})
	}
}

func ledgerError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrAuth):
		return fiber.NewError(http.StatusBadGateway, "ledger rejected credentials")
	case errors.Is(err, ledger.ErrRemoteUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, "ledger unavailable")
	default:
		return err
	}
}
