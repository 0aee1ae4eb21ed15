package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/usecase"
)

var errTxClosed = errors.New("memory: transaction already closed")

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransactionConflict, err)
	}

	return &Tx{
		store:    m.store,
		held:     make(map[int64]struct{}),
		balances: make(map[int64]balanceWrite),
	}, nil
}

type balanceWrite struct {
	balance   decimal.Decimal
	updatedAt time.Time
}

// Tx is a unit of work over a Store. It holds account locks from the
// moment they are acquired until Commit or Rollback.
type Tx struct {
	store *Store

	mu       sync.Mutex
	held     map[int64]struct{}
	balances map[int64]balanceWrite
	tips     []*domain.Tip
	closed   bool
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory: unexpected transaction type %T", tx)
	}
	return t, nil
}

// lockAll acquires the locks for ids in ascending order, skipping ones
// already held.
func (t *Tx) lockAll(ctx context.Context, ids []int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return errTxClosed
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	for _, id := range sorted {
		if _, ok := t.held[id]; ok {
			continue
		}
		if err := t.store.lock(ctx, id); err != nil {
			return err
		}
		t.held[id] = struct{}{}
	}

	return nil
}

func (t *Tx) setBalance(id int64, balance decimal.Decimal, updatedAt time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return errTxClosed
	}
	if _, ok := t.held[id]; !ok {
		return fmt.Errorf("memory: account %d updated without lock", id)
	}

	t.balances[id] = balanceWrite{balance: balance, updatedAt: updatedAt}
	return nil
}

func (t *Tx) addTip(tip *domain.Tip) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return errTxClosed
	}

	t.tips = append(t.tips, copyTip(tip))
	return nil
}

// overlay returns the account as seen inside the transaction.
func (t *Tx) overlay(a *domain.Account) *domain.Account {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := copyAccount(a)
	if w, ok := t.balances[a.ID]; ok {
		c.Balance = w.balance
		c.UpdatedAt = w.updatedAt
	}
	return c
}

// Commit applies buffered writes atomically and releases all locks.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return errTxClosed
	}
	defer t.release()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransactionConflict, err)
	}

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Constraint checks happen before anything is applied.
	for id, w := range t.balances {
		if _, ok := s.accounts[id]; !ok {
			return fmt.Errorf("%w: account %d no longer exists", domain.ErrTransactionConflict, id)
		}
		if w.balance.IsNegative() {
			return fmt.Errorf("%w: account %d balance would be negative", domain.ErrTransactionConflict, id)
		}
	}

	for _, tip := range t.tips {
		if _, ok := s.tipIndex[tip.ID]; ok {
			return fmt.Errorf("%w: duplicate tip id %s", domain.ErrTransactionConflict, tip.ID)
		}
		if _, ok := s.accounts[tip.FromAccountID]; !ok {
			return fmt.Errorf("%w: tip references missing account %d", domain.ErrTransactionConflict, tip.FromAccountID)
		}
		if _, ok := s.accounts[tip.ToAccountID]; !ok {
			return fmt.Errorf("%w: tip references missing account %d", domain.ErrTransactionConflict, tip.ToAccountID)
		}
	}

	for id, w := range t.balances {
		account := s.accounts[id]
		account.Balance = w.balance
		account.UpdatedAt = w.updatedAt
	}

	for _, tip := range t.tips {
		s.tips = append(s.tips, tip)
		s.tipIndex[tip.ID] = tip
	}

	return nil
}

// Rollback discards buffered writes and releases all locks. Rolling back a
// closed transaction is a no-op.
func (t *Tx) Rollback(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.release()
	return nil
}

// release must be called with t.mu held.
func (t *Tx) release() {
	for id := range t.held {
		t.store.unlock(id)
	}

	t.held = nil
	t.balances = nil
	t.tips = nil
	t.closed = true
}
