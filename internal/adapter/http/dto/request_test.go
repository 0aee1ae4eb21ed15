package dto

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lrcollege/tipledger/internal/domain"
)

func TestGiveTipRequest_ToUseCaseInput(t *testing.T) {
	req := GiveTipRequest{ToAccountID: 9, Amount: " 20.00 ", Memo: "thanks"}

	input, err := req.ToUseCaseInput(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if input.FromAccountID != 3 || input.ToAccountID != 9 || input.Memo != "thanks" {
		t.Fatalf("unexpected input: %+v", input)
	}

	if !input.Amount.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected amount 20, got %s", input.Amount)
	}
}

func TestGiveTipRequest_ToUseCaseInputRejectsBadAmounts(t *testing.T) {
	for _, amount := range []string{"", "  ", "ten", "1,50"} {
		req := GiveTipRequest{ToAccountID: 2, Amount: amount}

		if _, err := req.ToUseCaseInput(1); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("amount %q: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}
