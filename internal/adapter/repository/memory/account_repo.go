package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create stores a new account and assigns its ID when unset.
func (r *AccountRepository) Create(_ context.Context, account *domain.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[account.Email]; ok {
		return domain.ErrDuplicateEmail
	}

	if account.ID == 0 {
		s.lastID++
		account.ID = s.lastID
	} else if _, ok := s.accounts[account.ID]; ok {
		return fmt.Errorf("memory: account %d already exists", account.ID)
	} else if account.ID > s.lastID {
		s.lastID = account.ID
	}

	s.accounts[account.ID] = copyAccount(account)
	s.emails[account.Email] = account.ID

	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.NewAccountNotFoundError(id)
	}

	return copyAccount(account), nil
}

// GetByIDs retrieves the accounts that exist among ids, ordered by ID.
func (r *AccountRepository) GetByIDs(_ context.Context, ids []int64) ([]*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(ids, nil), nil
}

// GetByIDsForUpdate locks ids in ascending order and returns the accounts
// that still exist once every lock is held.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []int64) ([]*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := t.lockAll(ctx, ids); err != nil {
		return nil, err
	}

	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(ids, t), nil
}

// UpdateBalance buffers a balance write in tx.
func (r *AccountRepository) UpdateBalance(_ context.Context, tx usecase.Transaction, id int64, balance decimal.Decimal, updatedAt time.Time) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	return t.setBalance(id, balance, updatedAt)
}

// collect must be called with s.mu held.
func (s *Store) collect(ids []int64, t *Tx) []*domain.Account {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	accounts := make([]*domain.Account, 0, len(sorted))
	for _, id := range sorted {
		account, ok := s.accounts[id]
		if !ok {
			continue
		}
		if t != nil {
			accounts = append(accounts, t.overlay(account))
		} else {
			accounts = append(accounts, copyAccount(account))
		}
	}

	return accounts
}
