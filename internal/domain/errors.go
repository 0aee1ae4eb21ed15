package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateEmail      = errors.New("email already registered")

	// Tip errors
	ErrSelfTransfer        = errors.New("cannot tip yourself")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidMemo         = errors.New("invalid memo")
	ErrTipNotFound         = errors.New("tip not found")
	ErrTransactionConflict = errors.New("transaction conflict")
)

// AccountNotFoundError names the account ids that could not be found.
// It matches ErrAccountNotFound with errors.Is.
type AccountNotFoundError struct {
	IDs []int64
}

// NewAccountNotFoundError creates an AccountNotFoundError for ids.
func NewAccountNotFoundError(ids ...int64) *AccountNotFoundError {
	return &AccountNotFoundError{IDs: ids}
}

func (e *AccountNotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return ErrAccountNotFound.Error()
	}

	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = strconv.FormatInt(id, 10)
	}

	return fmt.Sprintf("%s: %s", ErrAccountNotFound, strings.Join(parts, ", "))
}

// Is reports whether target is ErrAccountNotFound.
func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}
