// Package memory implements the repositories in process. Each account has
// its own lock; a transaction buffers its writes and applies them under the
// store mutex at commit.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/lrcollege/tipledger/internal/domain"
)

// Store holds accounts and tips.
type Store struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
	emails   map[string]int64
	tips     []*domain.Tip
	tipIndex map[string]*domain.Tip
	lastID   int64

	locksMu sync.Mutex
	locks   map[int64]chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]*domain.Account),
		emails:   make(map[string]int64),
		tipIndex: make(map[string]*domain.Tip),
		locks:    make(map[int64]chan struct{}),
	}
}

// DeleteAccount removes an account once no transaction holds its lock.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.lock(ctx, id); err != nil {
		return err
	}
	defer s.unlock(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return domain.NewAccountNotFoundError(id)
	}

	delete(s.emails, account.Email)
	delete(s.accounts, id)

	return nil
}

func (s *Store) lockFor(id int64) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}

	return ch
}

// lock blocks until the account lock is free or ctx is done.
func (s *Store) lock(ctx context.Context, id int64) error {
	select {
	case s.lockFor(id) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for lock on account %d: %v", domain.ErrTransactionConflict, id, ctx.Err())
	}
}

func (s *Store) unlock(id int64) {
	<-s.lockFor(id)
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func copyTip(t *domain.Tip) *domain.Tip {
	c := *t
	if t.Memo != nil {
		memo := *t.Memo
		c.Memo = &memo
	}
	return &c
}
