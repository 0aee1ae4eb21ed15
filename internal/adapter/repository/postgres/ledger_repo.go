package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lrcollege/tipledger/internal/infrastructure/postgres/generated"
	"github.com/lrcollege/tipledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(pool)}
}

// Snapshot aggregates balances and tips in a single statement, so both
// sides come from the same MVCC snapshot.
func (r *LedgerRepository) Snapshot(ctx context.Context) (*usecase.LedgerSnapshot, error) {
	row, err := r.queries.LedgerSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &usecase.LedgerSnapshot{
		TotalBalance:     numericToDecimal(row.TotalBalance),
		TipVolume:        numericToDecimal(row.TipVolume),
		AccountCount:     row.AccountCount,
		NegativeAccounts: row.NegativeAccounts,
		TipCount:         row.TipCount,
		InvalidTips:      row.InvalidTips,
	}, nil
}
