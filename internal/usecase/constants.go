package usecase

import (
	"errors"
	"time"
)

const (
	// DefaultTransactionTimeout bounds a single tip attempt, including the
	// wait for account locks.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is the value held under a key while the first
	// request using it is in flight.
	IdempotencyPending = "processing"

	// IdentityCacheTTL is how long account identities are cached
	IdentityCacheTTL = 5 * time.Minute
)

// ErrCacheMiss is returned by Cache.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")
