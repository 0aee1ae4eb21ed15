package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

type fakeLedgerRepository struct {
	snapshot *LedgerSnapshot
	err      error
}

func (f *fakeLedgerRepository) Snapshot(ctx context.Context) (*LedgerSnapshot, error) {
	return f.snapshot, f.err
}

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	tests := []struct {
		name        string
		repo        *fakeLedgerRepository
		want        bool
		expectedErr error
	}{
		{
			name: "healthy ledger",
			repo: &fakeLedgerRepository{snapshot: &LedgerSnapshot{
				TotalBalance: decimal.NewFromInt(100),
				TipVolume:    decimal.NewFromInt(35),
				AccountCount: 3,
				TipCount:     7,
			}},
			want: true,
		},
		{
			name:        "repo error surfaces",
			repo:        &fakeLedgerRepository{err: errors.New("db down")},
			expectedErr: errors.New("db down"),
		},
		{
			name: "negative account",
			repo: &fakeLedgerRepository{snapshot: &LedgerSnapshot{
				TotalBalance:     decimal.NewFromInt(1),
				NegativeAccounts: 1,
			}},
			want: false,
		},
		{
			name: "invalid tip",
			repo: &fakeLedgerRepository{snapshot: &LedgerSnapshot{
				InvalidTips: 2,
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewLedgerUseCase(tt.repo)
			report, err := uc.CheckConsistency(context.Background())

			if tt.expectedErr != nil {
				if err == nil || err.Error() != tt.expectedErr.Error() {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if report.Consistent != tt.want {
				t.Fatalf("expected consistent=%v, got %v", tt.want, report.Consistent)
			}

			if !report.TotalBalance.Equal(tt.repo.snapshot.TotalBalance) || report.TipCount != tt.repo.snapshot.TipCount {
				t.Fatalf("report does not mirror snapshot: %+v", report)
			}
		})
	}
}
