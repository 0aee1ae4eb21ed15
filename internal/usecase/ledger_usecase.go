package usecase

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// ConsistencyReport summarises the ledger. Tips move balance between
// accounts, so TotalBalance only changes when accounts are seeded.
type ConsistencyReport struct {
	TotalBalance     decimal.Decimal
	TipVolume        decimal.Decimal
	AccountCount     int64
	TipCount         int64
	NegativeAccounts int64
	InvalidTips      int64
	Consistent       bool
}

// CheckConsistency verifies that no account is overdrawn and that every tip
// moves a positive amount between two distinct accounts.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	snapshot, err := uc.ledgerRepo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &ConsistencyReport{
		TotalBalance:     snapshot.TotalBalance,
		TipVolume:        snapshot.TipVolume,
		AccountCount:     snapshot.AccountCount,
		TipCount:         snapshot.TipCount,
		NegativeAccounts: snapshot.NegativeAccounts,
		InvalidTips:      snapshot.InvalidTips,
		Consistent:       snapshot.NegativeAccounts == 0 && snapshot.InvalidTips == 0,
	}, nil
}
