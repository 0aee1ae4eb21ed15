package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidEmail   = errors.New("invalid email format")
	ErrInvalidRole    = errors.New("invalid role")
	ErrInvalidBalance = errors.New("invalid balance")
)

// Validation constants
const (
	MoneyScale      = 2
	MaxTipAmount    = "99999999.99"   // DECIMAL(10,2)
	MaxBalance      = "9999999999.99" // DECIMAL(12,2)
	MaxMemoLength   = 500
	MaxPageSize     = 100
	DefaultPageSize = 20
	MaxPageOffset   = math.MaxInt32 // OFFSET is bound as int4
)

var (
	maxTipAmount = decimal.RequireFromString(MaxTipAmount)
	maxBalance   = decimal.RequireFromString(MaxBalance)
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateAmount checks that amount is a positive money value with at most
// two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}

	if !hasMoneyScale(amount) {
		return fmt.Errorf("%w: amount must have at most %d decimal places", ErrInvalidAmount, MoneyScale)
	}

	if amount.GreaterThan(maxTipAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxTipAmount)
	}

	return nil
}

// ValidateOpeningBalance checks the balance an account is seeded with.
func ValidateOpeningBalance(balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("%w: balance cannot be negative", ErrInvalidBalance)
	}

	if !hasMoneyScale(balance) {
		return fmt.Errorf("%w: balance must have at most %d decimal places", ErrInvalidBalance, MoneyScale)
	}

	if balance.GreaterThan(maxBalance) {
		return fmt.Errorf("%w: maximum balance is %s", ErrInvalidBalance, MaxBalance)
	}

	return nil
}

// ValidateMemo checks the optional message sent with a tip.
func ValidateMemo(memo string) error {
	if n := utf8.RuneCountInString(memo); n > MaxMemoLength {
		return fmt.Errorf("%w: memo has %d characters, limit is %d", ErrInvalidMemo, n, MaxMemoLength)
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// ValidatePagination clamps pagination parameters to sane bounds.
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	if offset > MaxPageOffset {
		offset = MaxPageOffset
	}

	return limit, offset
}

func hasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}
