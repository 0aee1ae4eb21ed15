package postgres

import (
	"context"
	"math"
	"testing"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/lrcollege/tipledger/internal/infrastructure/postgres/generated"
)

var tipColumns = []string{"id", "from_account_id", "to_account_id", "amount", "memo", "created_at"}

func newTipRepoWithPool(t *testing.T) (*TipRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return &TipRepository{queries: generated.New(pool)}, pool
}

func TestTipRepositoryListClampsOffset(t *testing.T) {
	tests := []struct {
		name       string
		offset     int
		wantOffset int32
	}{
		{"in range", 40, 40},
		{"negative", -1, 0},
		{"int4 max", math.MaxInt32, math.MaxInt32},
		{"just past int4", math.MaxInt32 + 1, math.MaxInt32},
		{"wraps to zero", 1 << 32, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, pool := newTipRepoWithPool(t)
			pool.ExpectQuery("FROM tips").
				WithArgs(int64(1), int32(20), tt.wantOffset).
				WillReturnRows(pgxmock.NewRows(tipColumns))
			pool.ExpectQuery("FROM tips").
				WithArgs(int64(1), int32(20), tt.wantOffset).
				WillReturnRows(pgxmock.NewRows(tipColumns))

			sent, err := repo.ListSent(context.Background(), 1, 20, tt.offset)
			if err != nil {
				t.Fatalf("ListSent: %v", err)
			}
			if len(sent) != 0 {
				t.Fatalf("expected no tips, got %d", len(sent))
			}

			if _, err := repo.ListReceived(context.Background(), 1, 20, tt.offset); err != nil {
				t.Fatalf("ListReceived: %v", err)
			}

			assertExpectations(t, pool)
		})
	}
}

func TestTipRepositoryListClampsLimit(t *testing.T) {
	repo, pool := newTipRepoWithPool(t)
	pool.ExpectQuery("FROM tips").
		WithArgs(int64(7), int32(100), int32(0)).
		WillReturnRows(pgxmock.NewRows(tipColumns))

	if _, err := repo.ListSent(context.Background(), 7, 1<<40, 0); err != nil {
		t.Fatalf("ListSent: %v", err)
	}

	assertExpectations(t, pool)
}
