//go:build integration

package integration

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/usecase"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGiveTip_MovesBalanceAndRecordsTip(t *testing.T) {
	f := newFixture(t)
	alice := f.db.CreateAccount(bg(), "50.00")
	bob := f.db.CreateAccount(bg(), "5.00")

	memo := "great notes"
	tip, err := f.tips.GiveTip(bg(), usecase.GiveTipInput{
		FromAccountID: alice.ID,
		ToAccountID:   bob.ID,
		Amount:        dec("20.00"),
		Memo:          memo,
	})
	require.NoError(t, err)

	assert.True(t, f.db.Balance(bg(), alice.ID).Equal(dec("30.00")))
	assert.True(t, f.db.Balance(bg(), bob.ID).Equal(dec("25.00")))
	assert.Equal(t, int64(1), f.db.TipCount(bg()))

	stored, err := f.tips.GetTip(bg(), tip.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, stored.FromAccountID)
	assert.Equal(t, bob.ID, stored.ToAccountID)
	assert.True(t, stored.Amount.Equal(dec("20")))
	require.NotNil(t, stored.Memo)
	assert.Equal(t, memo, *stored.Memo)

	sent, err := f.tips.ListSentTips(bg(), usecase.ListTipsInput{AccountID: alice.ID})
	require.NoError(t, err)
	require.Len(t, sent, 1)

	received, err := f.tips.ListReceivedTips(bg(), usecase.ListTipsInput{AccountID: bob.ID})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, tip.ID, received[0].ID)

	report, err := f.ledger.CheckConsistency(bg())
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.True(t, report.TotalBalance.Equal(dec("55.00")))
}

func TestGiveTip_WholeBalanceAndOneCentMore(t *testing.T) {
	f := newFixture(t)
	alice := f.db.CreateAccount(bg(), "10.00")
	bob := f.db.CreateAccount(bg(), "0")

	_, err := f.tips.GiveTip(bg(), usecase.GiveTipInput{FromAccountID: alice.ID, ToAccountID: bob.ID, Amount: dec("10.01")})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.True(t, f.db.Balance(bg(), alice.ID).Equal(dec("10.00")))
	assert.Equal(t, int64(0), f.db.TipCount(bg()))

	// Repeating the rejected request changes nothing either.
	_, err = f.tips.GiveTip(bg(), usecase.GiveTipInput{FromAccountID: alice.ID, ToAccountID: bob.ID, Amount: dec("10.01")})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	_, err = f.tips.GiveTip(bg(), usecase.GiveTipInput{FromAccountID: alice.ID, ToAccountID: bob.ID, Amount: dec("10.00")})
	require.NoError(t, err)
	assert.True(t, f.db.Balance(bg(), alice.ID).IsZero())
	assert.True(t, f.db.Balance(bg(), bob.ID).Equal(dec("10.00")))
}

func TestGiveTip_Rejections(t *testing.T) {
	f := newFixture(t)
	alice := f.db.CreateAccount(bg(), "10.00")
	bob := f.db.CreateAccount(bg(), "0")

	tests := []struct {
		name  string
		input usecase.GiveTipInput
		want  error
	}{
		{"self transfer", usecase.GiveTipInput{FromAccountID: alice.ID, ToAccountID: alice.ID, Amount: dec("1")}, domain.ErrSelfTransfer},
		{"zero amount", usecase.GiveTipInput{FromAccountID: alice.ID, ToAccountID: bob.ID, Amount: dec("0")}, domain.ErrInvalidAmount},
		{"negative amount", usecase.GiveTipInput{FromAccountID: alice.ID, ToAccountID: bob.ID, Amount: dec("-1")}, domain.ErrInvalidAmount},
		{"sub-cent amount", usecase.GiveTipInput{FromAccountID: alice.ID, ToAccountID: bob.ID, Amount: dec("0.001")}, domain.ErrInvalidAmount},
		{"unknown receiver", usecase.GiveTipInput{FromAccountID: alice.ID, ToAccountID: 999999, Amount: dec("1")}, domain.ErrAccountNotFound},
		{"unknown sender", usecase.GiveTipInput{FromAccountID: 999999, ToAccountID: bob.ID, Amount: dec("1")}, domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tips.GiveTip(bg(), tt.input)
			require.ErrorIs(t, err, tt.want)
		})
	}

	assert.True(t, f.db.Balance(bg(), alice.ID).Equal(dec("10.00")))
	assert.True(t, f.db.Balance(bg(), bob.ID).IsZero())
	assert.Equal(t, int64(0), f.db.TipCount(bg()))
}

func TestGiveTip_UnknownAccountsReported(t *testing.T) {
	f := newFixture(t)
	alice := f.db.CreateAccount(bg(), "10.00")

	_, err := f.tips.GiveTip(bg(), usecase.GiveTipInput{FromAccountID: alice.ID, ToAccountID: 424242, Amount: dec("1")})

	var notFound *domain.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []int64{424242}, notFound.IDs)
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	f := newFixture(t)

	input := usecase.CreateAccountInput{
		Email:          "dup@example.edu",
		FirstName:      "Dup",
		LastName:       "Licate",
		Role:           domain.RoleTeacher,
		OpeningBalance: dec("1.00"),
	}
	_, err := f.accounts.CreateAccount(bg(), input)
	require.NoError(t, err)

	_, err = f.accounts.CreateAccount(bg(), input)
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}
