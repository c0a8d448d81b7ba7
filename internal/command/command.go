// Package command defines the bot's command set and a static router over it.
// The command list is closed: anything outside it is rejected with
// ErrUnknownCommand rather than guessed at.
package command

import (
	"context"
	"errors"
)

// Command is one of the bot's slash commands, without the leading slash.
type Command string

const (
	Start    Command = "start"
	Help     Command = "help"
	Status   Command = "status"
	Shop     Command = "shop"
	Cart     Command = "cart"
	Add      Command = "add"
	Remove   Command = "remove"
	Checkout Command = "checkout"
	Orders   Command = "orders"
	Deposit  Command = "deposit"
	Cancel   Command = "cancel"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Request is one parsed inbound command.
type Request struct {
	Command   Command
	Args      []string
	UserID    int64
	Username  string
	FirstName string
}

// Reply is what a handler wants sent back to the chat.
type Reply struct {
	Text     string
	Markdown bool
}

// HandlerFunc executes one command.
type HandlerFunc func(ctx context.Context, req Request) (Reply, error)

type route struct {
	minArgs int
	maxArgs int
	usage   string
	fn      HandlerFunc
}

// Router dispatches requests to registered handlers. Registration happens
// once at startup; Dispatch is then safe for concurrent use.
type Router struct {
	routes map[Command]route
}

func NewRouter() *Router {
	return &Router{routes: make(map[Command]route)}
}

// Register wires a handler with its argument arity. maxArgs < 0 means
// unbounded.
func (r *Router) Register(cmd Command, minArgs, maxArgs int, usage string, fn HandlerFunc) {
	r.routes[cmd] = route{minArgs: minArgs, maxArgs: maxArgs, usage: usage, fn: fn}
}

// Usage returns the registered usage line for a command, if any.
func (r *Router) Usage(cmd Command) string {
	return r.routes[cmd].usage
}

// Dispatch validates the request against the closed command set and runs the
// handler.
func (r *Router) Dispatch(ctx context.Context, req Request) (Reply, error) {
	rt, ok := r.routes[req.Command]
	if !ok {
		return Reply{}, ErrUnknownCommand
	}
	if len(req.Args) < rt.minArgs || (rt.maxArgs >= 0 && len(req.Args) > rt.maxArgs) {
		return Reply{}, ErrInvalidArguments
	}
	return rt.fn(ctx, req)
}
