package identity

import (
	"context"
	"errors"
	"testing"
)

func TestUpsertIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.Upsert(ctx, User{ID: 42, Username: "alice"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	first, err := repo.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// Second upsert updates the profile but keeps the original created_at.
	if err := repo.Upsert(ctx, User{ID: 42, Username: "alice2"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := repo.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if second.Username != "alice2" {
		t.Fatalf("expected updated username, got %q", second.Username)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatal("created_at must survive re-upsert")
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 user, got %d", len(all))
	}
}

func TestGetMissingUser(t *testing.T) {
	repo := NewMemoryRepository()
	if _, err := repo.Get(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
