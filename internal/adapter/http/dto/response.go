package dto

import (
	"time"

	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/usecase"
)

// ErrorResponse represents an error in API responses. Error is a stable
// machine-readable code.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents the caller's own account.
type AccountResponse struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      domain.Role `json:"role"`
	Balance   string      `json:"balance"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Role:      a.Role,
		Balance:   a.Balance.StringFixed(domain.MoneyScale),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// TipResponse represents a tip with nested sender and receiver.
type TipResponse struct {
	ID        string          `json:"id"`
	Sender    domain.Identity `json:"sender"`
	Receiver  domain.Identity `json:"receiver"`
	Amount    string          `json:"amount"`
	Memo      *string         `json:"memo"`
	CreatedAt time.Time       `json:"created_at"`
}

// TipFromDomain converts a tip to a response. Identities missing from
// identities are reduced to their id.
func TipFromDomain(t *domain.Tip, identities map[int64]domain.Identity) *TipResponse {
	return &TipResponse{
		ID:        t.ID,
		Sender:    lookupIdentity(identities, t.FromAccountID),
		Receiver:  lookupIdentity(identities, t.ToAccountID),
		Amount:    t.Amount.StringFixed(domain.MoneyScale),
		Memo:      t.Memo,
		CreatedAt: t.CreatedAt,
	}
}

// TipsFromDomain converts tips to responses.
func TipsFromDomain(tips []*domain.Tip, identities map[int64]domain.Identity) []*TipResponse {
	result := make([]*TipResponse, len(tips))
	for i, t := range tips {
		result[i] = TipFromDomain(t, identities)
	}
	return result
}

// TipAccountIDs returns every account referenced by tips.
func TipAccountIDs(tips ...*domain.Tip) []int64 {
	ids := make([]int64, 0, 2*len(tips))
	for _, t := range tips {
		ids = append(ids, t.FromAccountID, t.ToAccountID)
	}
	return ids
}

func lookupIdentity(identities map[int64]domain.Identity, id int64) domain.Identity {
	if identity, ok := identities[id]; ok {
		return identity
	}
	return domain.Identity{ID: id}
}

// TipListResponse wraps a page of tips.
type TipListResponse struct {
	Tips   []*TipResponse `json:"tips"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ConsistencyResponse reports ledger-wide totals.
type ConsistencyResponse struct {
	Consistent       bool   `json:"consistent"`
	TotalBalance     string `json:"total_balance"`
	TipVolume        string `json:"tip_volume"`
	AccountCount     int64  `json:"account_count"`
	TipCount         int64  `json:"tip_count"`
	NegativeAccounts int64  `json:"negative_accounts"`
	InvalidTips      int64  `json:"invalid_tips"`
}

// ConsistencyFromReport converts a consistency report to a response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	return &ConsistencyResponse{
		Consistent:       r.Consistent,
		TotalBalance:     r.TotalBalance.StringFixed(domain.MoneyScale),
		TipVolume:        r.TipVolume.StringFixed(domain.MoneyScale),
		AccountCount:     r.AccountCount,
		TipCount:         r.TipCount,
		NegativeAccounts: r.NegativeAccounts,
		InvalidTips:      r.InvalidTips,
	}
}
