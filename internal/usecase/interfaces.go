package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lrcollege/tipledger/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Account, error)
	// GetByIDsForUpdate locks the rows in ascending id order and returns the
	// ones that exist.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []int64) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error
}

// TipRepository defines data access for the append-only tip ledger.
type TipRepository interface {
	Create(ctx context.Context, tx Transaction, tip *domain.Tip) error
	GetByID(ctx context.Context, id string) (*domain.Tip, error)
	ListSent(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Tip, error)
	ListReceived(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Tip, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	Snapshot(ctx context.Context) (*LedgerSnapshot, error)
}

// LedgerSnapshot aggregates the state of all accounts and tips.
type LedgerSnapshot struct {
	TotalBalance     decimal.Decimal
	TipVolume        decimal.Decimal
	AccountCount     int64
	NegativeAccounts int64
	TipCount         int64
	InvalidTips      int64
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation that failed with a retryable error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// TipMetrics records tip outcomes.
type TipMetrics interface {
	TipCreated(amount decimal.Decimal, elapsed time.Duration)
	TipFailed(reason string)
}

// Cache is a string key/value store with expiry. Get returns ErrCacheMiss
// when the key is absent.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not succeed.
	Release(ctx context.Context, key string) error
}
