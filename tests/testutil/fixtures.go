// Package testutil provides a disposable postgres database for
// integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	postgresRepo "github.com/lrcollege/tipledger/internal/adapter/repository/postgres"
	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/infrastructure/postgres"
	"github.com/lrcollege/tipledger/internal/infrastructure/postgres/generated"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	URL     string
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

var emailSeq atomic.Int64

// NewTestDB connects to DATABASE_URL when set and otherwise starts a
// postgres container for the test. Migrations are applied from the
// embedded set; the pool is closed on test cleanup.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = startContainer(t)
	}

	if err := postgres.RunMigrations(dbURL, ""); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 32, 2)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	db := &TestDB{
		URL:     dbURL,
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	db.TruncateAll(ctx)

	return db
}

func startContainer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tipledger"),
		tcpostgres.WithUsername("tipledger"),
		tcpostgres.WithPassword("tipledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to read container connection string: %v", err)
	}

	return connStr
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE tips, accounts RESTART IDENTITY CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateAccount inserts a student account with the given opening balance.
func (db *TestDB) CreateAccount(ctx context.Context, balance string) *domain.Account {
	db.t.Helper()

	now := time.Now().UTC()
	n := emailSeq.Add(1)
	account := &domain.Account{
		Email:     fmt.Sprintf("student%d@example.edu", n),
		FirstName: "Student",
		LastName:  fmt.Sprintf("No%d", n),
		Role:      domain.RoleStudent,
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := postgresRepo.NewAccountRepository(db.Pool).Create(ctx, account); err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}

	return account
}

// Balance reads the committed balance of an account.
func (db *TestDB) Balance(ctx context.Context, id int64) decimal.Decimal {
	db.t.Helper()

	var raw string
	if err := db.Pool.QueryRow(ctx, `SELECT balance::text FROM accounts WHERE id = $1`, id).Scan(&raw); err != nil {
		db.t.Fatalf("failed to read balance of %d: %v", id, err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		db.t.Fatalf("failed to parse balance %q: %v", raw, err)
	}

	return balance
}

// TotalBalance sums every account balance.
func (db *TestDB) TotalBalance(ctx context.Context) decimal.Decimal {
	db.t.Helper()

	var raw string
	if err := db.Pool.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0)::text FROM accounts`).Scan(&raw); err != nil {
		db.t.Fatalf("failed to sum balances: %v", err)
	}

	return decimal.RequireFromString(raw)
}

// TipCount returns the number of recorded tips.
func (db *TestDB) TipCount(ctx context.Context) int64 {
	db.t.Helper()

	var n int64
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tips`).Scan(&n); err != nil {
		db.t.Fatalf("failed to count tips: %v", err)
	}

	return n
}
