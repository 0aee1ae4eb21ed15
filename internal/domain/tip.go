package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tip is an immutable record of a completed balance movement between two
// accounts.
type Tip struct {
	CreatedAt     time.Time
	Memo          *string
	ID            string
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
}

// Validate validates a tip before it is recorded.
func (t *Tip) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSelfTransfer
	}

	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}

	if t.Memo != nil {
		return ValidateMemo(*t.Memo)
	}

	return nil
}

// Involves reports whether accountID is the sender or receiver.
func (t *Tip) Involves(accountID int64) bool {
	return t.FromAccountID == accountID || t.ToAccountID == accountID
}
