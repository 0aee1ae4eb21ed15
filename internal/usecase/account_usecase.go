package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lrcollege/tipledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	cache       Cache
}

// NewAccountUseCase creates a new AccountUseCase. cache may be nil.
func NewAccountUseCase(accountRepo AccountRepository, cache Cache) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		cache:       cache,
	}
}

// CreateAccountInput represents input for seeding an account.
type CreateAccountInput struct {
	Email          string
	FirstName      string
	LastName       string
	Role           domain.Role
	OpeningBalance decimal.Decimal
}

// CreateAccount creates a new account. The store assigns the ID.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	if input.Role == "" {
		input.Role = domain.RoleStudent
	}
	if !input.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}

	if err := domain.ValidateOpeningBalance(input.OpeningBalance); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Microsecond)

	account := &domain.Account{
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      input.Role,
		Balance:   input.OpeningBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetIdentities resolves the public identity of each id. Unknown ids are
// left out of the result.
func (uc *AccountUseCase) GetIdentities(ctx context.Context, ids []int64) (map[int64]domain.Identity, error) {
	identities := make(map[int64]domain.Identity, len(ids))

	var misses []int64
	for _, id := range uniqueIDs(ids) {
		if identity, ok := uc.cachedIdentity(ctx, id); ok {
			identities[id] = identity
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return identities, nil
	}

	accounts, err := uc.accountRepo.GetByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}

	for _, account := range accounts {
		identity := account.Identity()
		identities[account.ID] = identity
		uc.storeIdentity(ctx, identity)
	}

	return identities, nil
}

func (uc *AccountUseCase) cachedIdentity(ctx context.Context, id int64) (domain.Identity, bool) {
	var identity domain.Identity
	if uc.cache == nil {
		return identity, false
	}

	raw, err := uc.cache.Get(ctx, identityKey(id))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("account_id", id).Msg("identity cache read failed")
		}
		return identity, false
	}

	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return identity, false
	}

	return identity, true
}

func (uc *AccountUseCase) storeIdentity(ctx context.Context, identity domain.Identity) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, identityKey(identity.ID), string(raw), IdentityCacheTTL); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("account_id", identity.ID).Msg("identity cache write failed")
	}
}

func identityKey(id int64) string {
	return "account:identity:" + strconv.FormatInt(id, 10)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
