// Package wallet issues payment instructions for the configured BTC
// receiving address. The address is a static operator setting; no keys are
// held and no chain state is queried.
package wallet

import (
	"errors"
	"fmt"

	"github.com/tgshop/tgshop/internal/money"
)

var ErrNoAddress = errors.New("wallet address is not configured")

// Issuer hands out the shop's receiving address and formats per-order
// payment instructions.
type Issuer struct {
	address string
}

func NewIssuer(address string) (*Issuer, error) {
	if address == "" {
		return nil, ErrNoAddress
	}
	return &Issuer{address: address}, nil
}

// Address returns the receiving address exactly as configured. It is never
// reformatted or truncated; a customer pastes this into their wallet.
func (i *Issuer) Address() string {
	return i.address
}

// PaymentInstructions renders the message a customer receives after
// checking out with BTC, or on /deposit with no order context.
func (i *Issuer) PaymentInstructions(orderID string, total int64) string {
	if orderID == "" {
		return fmt.Sprintf(
			"Send BTC to the address below and include your order ID in the transfer note:\n\n%s",
			i.address,
		)
	}
	return fmt.Sprintf(
		"Order %s total: %s\n\nSend the BTC equivalent to:\n\n%s\n\nInclude %s in the transfer note so we can match your payment.",
		orderID, money.Format(total), i.address, orderID,
	)
}
