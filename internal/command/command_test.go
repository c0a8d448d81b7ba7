package command

import (
	"context"
	"errors"
	"testing"
)

func TestDispatchUnknownCommand(t *testing.T) {
	r := NewRouter()
	_, err := r.Dispatch(context.Background(), Request{Command: "fly"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestDispatchArgumentArity(t *testing.T) {
	r := NewRouter()
	r.Register(Add, 1, 1, "/add <product-id>", func(ctx context.Context, req Request) (Reply, error) {
		return Reply{Text: "added " + req.Args[0]}, nil
	})

	if _, err := r.Dispatch(context.Background(), Request{Command: Add}); !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments for missing arg, got %v", err)
	}
	if _, err := r.Dispatch(context.Background(), Request{Command: Add, Args: []string{"a", "b"}}); !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments for extra arg, got %v", err)
	}

	reply, err := r.Dispatch(context.Background(), Request{Command: Add, Args: []string{"p-1"}})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if reply.Text != "added p-1" {
		t.Fatalf("unexpected reply %q", reply.Text)
	}
}

func TestDispatchUnboundedArgs(t *testing.T) {
	r := NewRouter()
	r.Register(Shop, 0, -1, "/shop [category]", func(ctx context.Context, req Request) (Reply, error) {
		return Reply{}, nil
	})
	if _, err := r.Dispatch(context.Background(), Request{Command: Shop, Args: []string{"a", "b", "c"}}); err != nil {
		t.Fatalf("expected unbounded args to pass, got %v", err)
	}
}

func TestUsage(t *testing.T) {
	r := NewRouter()
	r.Register(Add, 1, 1, "/add <product-id>", func(ctx context.Context, req Request) (Reply, error) {
		return Reply{}, nil
	})
	if got := r.Usage(Add); got != "/add <product-id>" {
		t.Fatalf("unexpected usage %q", got)
	}
	if got := r.Usage(Help); got != "" {
		t.Fatalf("expected empty usage for unregistered command, got %q", got)
	}
}
