package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/usecase"
)

// TipRepository implements usecase.TipRepository.
type TipRepository struct {
	store *Store
}

// NewTipRepository creates a new TipRepository.
func NewTipRepository(store *Store) *TipRepository {
	return &TipRepository{store: store}
}

// Create buffers a tip in tx. It becomes visible at commit.
func (r *TipRepository) Create(_ context.Context, tx usecase.Transaction, tip *domain.Tip) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	return t.addTip(tip)
}

// GetByID retrieves a tip by ID.
func (r *TipRepository) GetByID(_ context.Context, id string) (*domain.Tip, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	tip, ok := s.tipIndex[id]
	if !ok {
		return nil, domain.ErrTipNotFound
	}

	return copyTip(tip), nil
}

// ListSent lists tips given by accountID, newest first.
func (r *TipRepository) ListSent(_ context.Context, accountID int64, limit, offset int) ([]*domain.Tip, error) {
	return r.list(func(t *domain.Tip) bool { return t.FromAccountID == accountID }, limit, offset), nil
}

// ListReceived lists tips received by accountID, newest first.
func (r *TipRepository) ListReceived(_ context.Context, accountID int64, limit, offset int) ([]*domain.Tip, error) {
	return r.list(func(t *domain.Tip) bool { return t.ToAccountID == accountID }, limit, offset), nil
}

func (r *TipRepository) list(match func(*domain.Tip) bool, limit, offset int) []*domain.Tip {
	s := r.store
	s.mu.RLock()
	var matched []*domain.Tip
	for _, tip := range s.tips {
		if match(tip) {
			matched = append(matched, copyTip(tip))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, newestFirst)

	if offset >= len(matched) {
		return []*domain.Tip{}
	}

	end := min(offset+limit, len(matched))

	return matched[offset:end]
}

// newestFirst orders by created_at DESC, id DESC.
func newestFirst(a, b *domain.Tip) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}
