package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account is a campus user holding an internal balance.
type Account struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Role      Role
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the display name of the account holder.
func (a *Account) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}

// ValidateDebit checks if the account can be debited by amount without
// going negative.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// ValidateCredit checks that crediting amount keeps the balance within the
// column range.
func (a *Account) ValidateCredit(amount decimal.Decimal) error {
	if a.ApplyCredit(amount).GreaterThan(maxBalance) {
		return fmt.Errorf("%w: receiver balance would exceed %s", ErrInvalidAmount, MaxBalance)
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// Identity is the public part of an account, nested into tips as sender and
// receiver. It carries no balance.
type Identity struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

// Identity returns the public identity of the account.
func (a *Account) Identity() Identity {
	return Identity{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
	}
}
