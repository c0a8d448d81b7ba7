package cart

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tgshop/tgshop/internal/catalog"
)

func newTestService(t *testing.T) (*Service, *catalog.Service) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cat := catalog.NewService(catalog.NewMemoryRepository())
	return NewService(NewRedisStore(client, time.Hour), cat), cat
}

func TestAddSnapshotsPrice(t *testing.T) {
	svc, cat := newTestService(t)
	ctx := context.Background()

	p, err := cat.Create(ctx, catalog.Product{Name: "Widget", Price: 1999, Category: "tools"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	item, err := svc.Add(ctx, 42, p.ID)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.Price != 1999 || item.Quantity != 1 {
		t.Fatalf("unexpected item %+v", item)
	}

	// Adding again bumps quantity, not a new line.
	if _, err := svc.Add(ctx, 42, p.ID); err != nil {
		t.Fatalf("add again: %v", err)
	}

	items, err := svc.Items(ctx, 42)
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected a single line with quantity 2, got %+v", items)
	}
	if Total(items) != 3998 {
		t.Fatalf("expected total 3998, got %d", Total(items))
	}
}

func TestAddUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Add(context.Background(), 42, "p-missing1"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected catalog.ErrNotFound, got %v", err)
	}
}

func TestRemoveDecrementsThenDeletes(t *testing.T) {
	svc, cat := newTestService(t)
	ctx := context.Background()

	p, _ := cat.Create(ctx, catalog.Product{Name: "Widget", Price: 500, Category: "tools"})
	svc.Add(ctx, 42, p.ID)
	svc.Add(ctx, 42, p.ID)

	if err := svc.Remove(ctx, 42, p.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, _ := svc.Items(ctx, 42)
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1 left, got %+v", items)
	}

	if err := svc.Remove(ctx, 42, p.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, _ = svc.Items(ctx, 42)
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}

	if err := svc.Remove(ctx, 42, p.ID); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, cat := newTestService(t)
	ctx := context.Background()

	p, _ := cat.Create(ctx, catalog.Product{Name: "Widget", Price: 500, Category: "tools"})
	svc.Add(ctx, 1, p.ID)

	items, _ := svc.Items(ctx, 2)
	if len(items) != 0 {
		t.Fatalf("user 2 should have an empty cart, got %+v", items)
	}
}

func TestClear(t *testing.T) {
	svc, cat := newTestService(t)
	ctx := context.Background()

	p, _ := cat.Create(ctx, catalog.Product{Name: "Widget", Price: 500, Category: "tools"})
	svc.Add(ctx, 42, p.ID)

	if err := svc.Clear(ctx, 42); err != nil {
		t.Fatalf("clear: %v", err)
	}
	items, _ := svc.Items(ctx, 42)
	if len(items) != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", items)
	}
}

func TestSummary(t *testing.T) {
	items := []Item{
		{ProductID: "p-1", Name: "Gadget", Price: 2500, Quantity: 1},
		{ProductID: "p-2", Name: "Widget", Price: 1000, Quantity: 2},
	}
	got := Summary(items)
	for _, want := range []string{"Gadget x1", "Widget x2", "$20.00", "Total: $45.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}

	if got := Summary(nil); got != "Your cart is empty." {
		t.Fatalf("unexpected empty summary %q", got)
	}
}
