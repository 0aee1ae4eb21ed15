package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lrcollege/tipledger/internal/usecase"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Snapshot aggregates balances and tips at a single point in time.
func (r *LedgerRepository) Snapshot(_ context.Context) (*usecase.LedgerSnapshot, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := &usecase.LedgerSnapshot{
		TotalBalance: decimal.Zero,
		TipVolume:    decimal.Zero,
		AccountCount: int64(len(s.accounts)),
		TipCount:     int64(len(s.tips)),
	}

	for _, account := range s.accounts {
		snapshot.TotalBalance = snapshot.TotalBalance.Add(account.Balance)
		if account.Balance.IsNegative() {
			snapshot.NegativeAccounts++
		}
	}

	for _, tip := range s.tips {
		snapshot.TipVolume = snapshot.TipVolume.Add(tip.Amount)
		if !tip.Amount.IsPositive() || tip.FromAccountID == tip.ToAccountID {
			snapshot.InvalidTips++
		}
	}

	return snapshot, nil
}
