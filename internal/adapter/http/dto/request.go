package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/usecase"
)

// GiveTipRequest represents a request to tip another account. The sender is
// always the authenticated caller.
type GiveTipRequest struct {
	ToAccountID int64  `json:"to_account_id"`
	Amount      string `json:"amount"`
	Memo        string `json:"memo,omitempty"`
}

// ToUseCaseInput converts to use case input for the caller's account.
func (r *GiveTipRequest) ToUseCaseInput(fromAccountID int64) (usecase.GiveTipInput, error) {
	raw := strings.TrimSpace(r.Amount)
	if raw == "" {
		return usecase.GiveTipInput{}, fmt.Errorf("%w: amount is required", domain.ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return usecase.GiveTipInput{}, fmt.Errorf("%w: %q is not a decimal", domain.ErrInvalidAmount, r.Amount)
	}

	return usecase.GiveTipInput{
		FromAccountID: fromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        amount,
		Memo:          r.Memo,
	}, nil
}
