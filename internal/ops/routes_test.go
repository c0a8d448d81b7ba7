package ops

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tgshop/tgshop/internal/cart"
	"github.com/tgshop/tgshop/internal/catalog"
	"github.com/tgshop/tgshop/internal/config"
	"github.com/tgshop/tgshop/internal/identity"
	"github.com/tgshop/tgshop/internal/ledger"
	"github.com/tgshop/tgshop/internal/logging"
	"github.com/tgshop/tgshop/internal/notification"
	"github.com/tgshop/tgshop/internal/order"
)

const adminToken = "super-secret"

type countingNotifier struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (n *countingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

type opsFixture struct {
	srv      *Server
	led      ledger.Ledger
	orders   *order.Service
	carts    *cart.Service
	catalog  *catalog.Service
	users    identity.Repository
	notifier *countingNotifier
}

func newFixture(t *testing.T) *opsFixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}

	logger := logging.Discard()
	led := ledger.NewInMemory()
	cat := catalog.NewService(catalog.NewMemoryRepository())
	carts := cart.NewService(cart.NewMemoryStore(), cat)
	users := identity.NewMemoryRepository()
	notifier := &countingNotifier{}
	orders := order.NewService(order.NewMemoryRepository(), led, carts, notifier, logger, nil, time.Second)

	srv, err := New(Deps{
		Cfg:      config.Config{AppName: "tgshop-test", OpsPort: "0", AdminTokenHash: string(hash)},
		Logger:   logger,
		Orders:   orders,
		Catalog:  cat,
		Users:    users,
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	return &opsFixture{srv: srv, led: led, orders: orders, carts: carts, catalog: cat, users: users, notifier: notifier}
}

func (f *opsFixture) request(t *testing.T, method, path, body string, authed bool) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	}
	resp, err := f.srv.app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func (f *opsFixture) placeOrder(t *testing.T, userID int64) order.Order {
	t.Helper()
	ctx := context.Background()
	p, err := f.catalog.Create(ctx, catalog.Product{Name: "Widget", Price: 1999, Category: "tools"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if _, err := f.carts.Add(ctx, userID, p.ID); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	o, _, err := f.orders.Checkout(ctx, userID, order.Details{
		Name: "Alice", Phone: "p", Address: "a", PaymentMethod: order.PaymentBTC,
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return o
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp := f.request(t, http.MethodGet, "/healthz", "", false)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	f := newFixture(t)
	resp := f.request(t, http.MethodGet, "/api/v1/orders", "", false)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t, 42)

	resp := f.request(t, http.MethodGet, "/api/v1/orders?user_id=42", "", true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Orders []struct {
			OrderID string `json:"order_id"`
			UserID  int64  `json:"user_id"`
			Status  string `json:"status"`
		} `json:"orders"`
	}
	decode(t, resp, &body)
	if len(body.Orders) != 1 || body.Orders[0].OrderID != o.ID || body.Orders[0].Status != "pending" {
		t.Fatalf("unexpected orders %+v", body.Orders)
	}

	// Filtering by a different user returns nothing.
	resp = f.request(t, http.MethodGet, "/api/v1/orders?user_id=99", "", true)
	decode(t, resp, &body)
	if len(body.Orders) != 0 {
		t.Fatalf("expected no orders, got %+v", body.Orders)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t, 42)

	resp := f.request(t, http.MethodPost, "/api/v1/orders/"+o.ID+"/status", `{"status":"shipped"}`, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	got, err := f.orders.Get(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != order.StatusShipped {
		t.Fatalf("expected shipped, got %s", got.Status)
	}

	resp = f.request(t, http.MethodPost, "/api/v1/orders/ORD-404/status", `{"status":"paid"}`, true)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = f.request(t, http.MethodPost, "/api/v1/orders/"+o.ID+"/status", `{"status":"teleported"}`, true)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateAndRetireProduct(t *testing.T) {
	f := newFixture(t)

	resp := f.request(t, http.MethodPost, "/api/v1/products",
		`{"name":"Gadget","price":2999,"category":"tools"}`, true)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, resp, &created)
	if created.ID == "" {
		t.Fatal("expected a product id")
	}

	resp = f.request(t, http.MethodPost, "/api/v1/products", `{"name":"","price":0,"category":""}`, true)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = f.request(t, http.MethodDelete, "/api/v1/products/"+created.ID, "", true)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	products, err := f.catalog.Browse(context.Background(), "tools")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected retired product hidden, got %+v", products)
	}
}

func TestBroadcast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.Upsert(ctx, identity.User{ID: 1})
	f.users.Upsert(ctx, identity.User{ID: 2})

	resp := f.request(t, http.MethodPost, "/api/v1/broadcast", `{"message":"Sale on now"}`, true)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Recipients int `json:"recipients"`
		Delivered  int `json:"delivered"`
	}
	decode(t, resp, &body)
	if body.Recipients != 2 || body.Delivered != 2 {
		t.Fatalf("unexpected broadcast result %+v", body)
	}

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	count := 0
	for _, m := range f.notifier.sent {
		if m.Kind == notification.KindBroadcast && m.Body == "Sale on now" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 broadcast messages, got %d", count)
	}

	resp = f.request(t, http.MethodPost, "/api/v1/broadcast", `{"message":"  "}`, true)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty message, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
