package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/lrcollege/tipledger/internal/domain"
)

// Retrier implements usecase.Retrier with exponential backoff. Only
// attempts that failed with domain.ErrTransactionConflict are retried.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
}

// NewRetrier creates a new retrier allowing maxRetries extra attempts.
func NewRetrier(maxRetries int) *Retrier {
	return &Retrier{
		maxRetries:      maxRetries,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  30 * time.Second,
	}
}

// Retry executes an operation with exponential backoff on retryable errors.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	logger := zerolog.Ctx(ctx)
	retryCount := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		logger.Warn().Err(err).Int("retry", retryCount).Msg("transaction conflict, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}

// isRetryableError reports whether err was classified as a conflict.
func isRetryableError(err error) bool {
	return errors.Is(err, domain.ErrTransactionConflict) || isConflict(err)
}
