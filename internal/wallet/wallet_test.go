package wallet

import (
	"errors"
	"strings"
	"testing"
)

const testAddress = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"

func TestNewIssuerRequiresAddress(t *testing.T) {
	if _, err := NewIssuer(""); !errors.Is(err, ErrNoAddress) {
		t.Fatalf("expected ErrNoAddress, got %v", err)
	}
}

func TestAddressReturnedVerbatim(t *testing.T) {
	iss, err := NewIssuer(testAddress)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	if got := iss.Address(); got != testAddress {
		t.Fatalf("address mangled: %q", got)
	}
}

func TestPaymentInstructionsContainAddressAndOrder(t *testing.T) {
	iss, _ := NewIssuer(testAddress)

	msg := iss.PaymentInstructions("ORD-004", 2599)
	if !strings.Contains(msg, testAddress) {
		t.Fatalf("instructions missing address: %q", msg)
	}
	if !strings.Contains(msg, "ORD-004") {
		t.Fatalf("instructions missing order id: %q", msg)
	}
	if !strings.Contains(msg, "$25.99") {
		t.Fatalf("instructions missing total: %q", msg)
	}

	bare := iss.PaymentInstructions("", 0)
	if !strings.Contains(bare, testAddress) {
		t.Fatalf("bare instructions missing address: %q", bare)
	}
}
