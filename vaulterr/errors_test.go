package vaulterr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(KindReceiptTimeout, "no receipt after 30 attempts")
	if KindOf(err) != KindReceiptTimeout {
		t.Errorf("Expected KindReceiptTimeout, got %s", KindOf(err))
	}

	// Kind survives fmt wrapping
	wrapped := fmt.Errorf("submit failed: %w", err)
	if KindOf(wrapped) != KindReceiptTimeout {
		t.Errorf("Expected KindReceiptTimeout through wrap, got %s", KindOf(wrapped))
	}

	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("Expected KindUnknown for unclassified error")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("Expected KindUnknown for nil error")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("insufficient funds for gas * price + value")
	err := Wrap(KindInsufficientFunds, "wallet rejected transaction", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected wrapped cause to be reachable via errors.Is")
	}
	if !Is(err, KindInsufficientFunds) {
		t.Error("Expected Is to match the kind")
	}
	if Is(err, KindUserRejected) {
		t.Error("Expected Is to reject a different kind")
	}
}

func TestKindString(t *testing.T) {
	if KindAllGatewaysFailed.String() != "ALL_GATEWAYS_FAILED" {
		t.Errorf("Unexpected kind name: %s", KindAllGatewaysFailed)
	}
	if Kind(9999).String() != "UNKNOWN" {
		t.Errorf("Unexpected name for out-of-range kind")
	}
}
