package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lrcollege/tipledger/internal/domain"
)

// PostgreSQL error codes that abort a tip without it being the caller's
// fault. Any of them is safe to retry from scratch.
const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
	pgErrLockNotAvailable     = "55P03"
	pgErrQueryCanceled        = "57014"
	pgErrUniqueViolation      = "23505"

	pgClassIntegrityViolation = "23"
)

// classifyError wraps store failures that a retry could resolve with
// domain.ErrTransactionConflict. Other errors pass through unchanged.
func classifyError(err error) error {
	if err == nil || errors.Is(err, domain.ErrTransactionConflict) {
		return err
	}

	if isConflict(err) {
		return fmt.Errorf("%w: %w", domain.ErrTransactionConflict, err)
	}

	return err
}

func isConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrSerializationFailure, pgErrDeadlock, pgErrLockNotAvailable, pgErrQueryCanceled:
			return true
		}
		return strings.HasPrefix(pgErr.Code, pgClassIntegrityViolation)
	}

	return errors.Is(err, context.DeadlineExceeded)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}
