//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/lrcollege/tipledger/internal/adapter/repository/postgres"
	"github.com/lrcollege/tipledger/internal/usecase"
	"github.com/lrcollege/tipledger/tests/testutil"
)

type fixture struct {
	db       *testutil.TestDB
	tips     *usecase.TipUseCase
	accounts *usecase.AccountUseCase
	ledger   *usecase.LedgerUseCase
}

type fixtureOptions struct {
	lockTimeout time.Duration
	txTimeout   time.Duration
	retries     int
	accountRepo func(*postgres.AccountRepository) usecase.AccountRepository
}

func newFixture(t *testing.T, opts ...func(*fixtureOptions)) *fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	o := fixtureOptions{
		lockTimeout: 5 * time.Second,
		txTimeout:   usecase.DefaultTransactionTimeout,
		retries:     3,
	}
	for _, opt := range opts {
		opt(&o)
	}

	db := testutil.NewTestDB(t)
	pool := db.Pool

	var accountRepo usecase.AccountRepository = postgres.NewAccountRepository(pool)
	if o.accountRepo != nil {
		accountRepo = o.accountRepo(postgres.NewAccountRepository(pool))
	}

	return &fixture{
		db: db,
		tips: usecase.NewTipUseCase(
			postgres.NewTxManager(pool, o.lockTimeout),
			accountRepo,
			postgres.NewTipRepository(pool),
			postgres.NewULIDGenerator(),
			usecase.WithRetrier(postgres.NewRetrier(o.retries)),
			usecase.WithTransactionTimeout(o.txTimeout),
		),
		accounts: usecase.NewAccountUseCase(postgres.NewAccountRepository(pool), nil),
		ledger:   usecase.NewLedgerUseCase(postgres.NewLedgerRepository(pool)),
	}
}

func bg() context.Context {
	return context.Background()
}
