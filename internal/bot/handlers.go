package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/tgshop/tgshop/internal/cart"
	"github.com/tgshop/tgshop/internal/command"
	"github.com/tgshop/tgshop/internal/money"
	"github.com/tgshop/tgshop/internal/session"
)

const helpText = `Commands:
/shop - browse categories
/shop <category> - list products
/add <product-id> - add a product to your cart
/remove <product-id> - remove one unit from your cart
/cart - show your cart
/checkout - place your order
/orders - your order history
/deposit - BTC payment details
/status - bot health
/cancel - abort checkout
/help - this message`

func (b *Bot) registerRoutes() {
	b.router.Register(command.Start, 0, 0, "/start", b.handleStart)
	b.router.Register(command.Help, 0, 0, "/help", b.handleHelp)
	b.router.Register(command.Status, 0, 0, "/status", b.handleStatus)
	b.router.Register(command.Shop, 0, 1, "/shop [category]", b.handleShop)
	b.router.Register(command.Cart, 0, 0, "/cart", b.handleCart)
	b.router.Register(command.Add, 1, 1, "/add <product-id>", b.handleAdd)
	b.router.Register(command.Remove, 1, 1, "/remove <product-id>", b.handleRemove)
	b.router.Register(command.Checkout, 0, 0, "/checkout", b.handleCheckout)
	b.router.Register(command.Orders, 0, 0, "/orders", b.handleOrders)
	b.router.Register(command.Deposit, 0, 0, "/deposit", b.handleDeposit)
	b.router.Register(command.Cancel, 0, 0, "/cancel", b.handleCancel)
}

func (b *Bot) handleStart(_ context.Context, req command.Request) (command.Reply, error) {
	name := req.FirstName
	if name == "" {
		name = "there"
	}
	return command.Reply{Text: fmt.Sprintf("Hi %s! Welcome to the shop.\n\n%s", name, helpText)}, nil
}

func (b *Bot) handleHelp(context.Context, command.Request) (command.Reply, error) {
	return command.Reply{Text: helpText}, nil
}

func (b *Bot) handleStatus(context.Context, command.Request) (command.Reply, error) {
	return command.Reply{Text: "OK"}, nil
}

func (b *Bot) handleShop(ctx context.Context, req command.Request) (command.Reply, error) {
	if len(req.Args) == 0 {
		cats, err := b.catalog.Categories(ctx)
		if err != nil {
			return command.Reply{}, err
		}
		if len(cats) == 0 {
			return command.Reply{Text: "The shop is empty right now. Check back soon."}, nil
		}
		var sb strings.Builder
		sb.WriteString("Categories:\n")
		for _, c := range cats {
			fmt.Fprintf(&sb, "- %s\n", c)
		}
		sb.WriteString("\nUse /shop <category> to see products.")
		return command.Reply{Text: sb.String()}, nil
	}

	products, err := b.catalog.Browse(ctx, req.Args[0])
	if err != nil {
		return command.Reply{}, err
	}
	if len(products) == 0 {
		return command.Reply{Text: fmt.Sprintf("No products in %q.", req.Args[0])}, nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Products in %s:\n", req.Args[0])
	for _, p := range products {
		fmt.Fprintf(&sb, "- %s  %s  (%s)\n", p.Name, money.Format(p.Price), p.ID)
		if p.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", p.Description)
		}
	}
	sb.WriteString("\nUse /add <product-id> to add one to your cart.")
	return command.Reply{Text: sb.String()}, nil
}

func (b *Bot) handleCart(ctx context.Context, req command.Request) (command.Reply, error) {
	items, err := b.carts.Items(ctx, req.UserID)
	if err != nil {
		return command.Reply{}, err
	}
	return command.Reply{Text: cart.Summary(items)}, nil
}

func (b *Bot) handleAdd(ctx context.Context, req command.Request) (command.Reply, error) {
	item, err := b.carts.Add(ctx, req.UserID, req.Args[0])
	if err != nil {
		return command.Reply{}, err
	}
	return command.Reply{Text: fmt.Sprintf("Added %s (%s) to your cart.", item.Name, money.Format(item.Price))}, nil
}

func (b *Bot) handleRemove(ctx context.Context, req command.Request) (command.Reply, error) {
	if err := b.carts.Remove(ctx, req.UserID, req.Args[0]); err != nil {
		return command.Reply{}, err
	}
	return command.Reply{Text: "Removed one unit from your cart."}, nil
}

func (b *Bot) handleCheckout(ctx context.Context, req command.Request) (command.Reply, error) {
	items, err := b.carts.Items(ctx, req.UserID)
	if err != nil {
		return command.Reply{}, err
	}
	if len(items) == 0 {
		return command.Reply{}, cart.ErrEmpty
	}

	if err := b.sessions.Put(ctx, req.UserID, session.Checkout{Stage: session.StageName}); err != nil {
		return command.Reply{}, err
	}
	return command.Reply{Text: "Let's check out. What name should we ship to?\n(Send /cancel at any point to abort.)"}, nil
}

func (b *Bot) handleOrders(ctx context.Context, req command.Request) (command.Reply, error) {
	orders, err := b.orders.History(ctx, req.UserID)
	if err != nil {
		return command.Reply{}, err
	}
	if len(orders) == 0 {
		return command.Reply{Text: "You have no orders yet."}, nil
	}

	var sb strings.Builder
	sb.WriteString("Your orders:\n")
	for _, o := range orders {
		fmt.Fprintf(&sb, "- %s  %s  %s\n", o.ID, money.Format(o.Total), o.Status)
	}
	return command.Reply{Text: sb.String()}, nil
}

func (b *Bot) handleDeposit(_ context.Context, _ command.Request) (command.Reply, error) {
	return command.Reply{Text: b.wallet.PaymentInstructions("", 0)}, nil
}

func (b *Bot) handleCancel(ctx context.Context, req command.Request) (command.Reply, error) {
	if _, err := b.sessions.Get(ctx, req.UserID); err != nil {
		return command.Reply{Text: "Nothing to cancel."}, nil
	}
	if err := b.sessions.Delete(ctx, req.UserID); err != nil {
		return command.Reply{}, err
	}
	return command.Reply{Text: "Checkout cancelled. Your cart is untouched."}, nil
}
