package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/infrastructure/postgres/generated"
	"github.com/lrcollege/tipledger/internal/usecase"
)

// TipRepository implements usecase.TipRepository.
type TipRepository struct {
	queries *generated.Queries
}

// NewTipRepository creates a new TipRepository.
func NewTipRepository(pool *pgxpool.Pool) *TipRepository {
	return &TipRepository{queries: generated.New(pool)}
}

// Create inserts a tip inside tx.
func (r *TipRepository) Create(ctx context.Context, tx usecase.Transaction, tip *domain.Tip) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	err = queries.CreateTip(ctx, generated.CreateTipParams{
		ID:            tip.ID,
		FromAccountID: tip.FromAccountID,
		ToAccountID:   tip.ToAccountID,
		Amount:        decimalToNumeric(tip.Amount),
		Memo:          stringToPgText(tip.Memo),
		CreatedAt:     timeToPgTimestamptz(tip.CreatedAt),
	})

	return classifyError(err)
}

// GetByID retrieves a tip by ID.
func (r *TipRepository) GetByID(ctx context.Context, id string) (*domain.Tip, error) {
	row, err := r.queries.GetTipByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTipNotFound
		}
		return nil, err
	}

	return rowToTip(row), nil
}

// ListSent lists tips given by accountID, newest first.
func (r *TipRepository) ListSent(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Tip, error) {
	l, o := pageParams(limit, offset)
	rows, err := r.queries.ListTipsSent(ctx, generated.ListTipsSentParams{
		FromAccountID: accountID,
		Limit:         l,
		Offset:        o,
	})
	if err != nil {
		return nil, err
	}

	return rowsToTips(rows), nil
}

// ListReceived lists tips received by accountID, newest first.
func (r *TipRepository) ListReceived(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Tip, error) {
	l, o := pageParams(limit, offset)
	rows, err := r.queries.ListTipsReceived(ctx, generated.ListTipsReceivedParams{
		ToAccountID: accountID,
		Limit:       l,
		Offset:      o,
	})
	if err != nil {
		return nil, err
	}

	return rowsToTips(rows), nil
}

// pageParams clamps limit and offset into int4 range before binding.
func pageParams(limit, offset int) (int32, int32) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return int32(limit), int32(offset)
}

func rowToTip(row generated.Tip) *domain.Tip {
	return &domain.Tip{
		ID:            row.ID,
		FromAccountID: row.FromAccountID,
		ToAccountID:   row.ToAccountID,
		Amount:        numericToDecimal(row.Amount),
		Memo:          pgTextToString(row.Memo),
		CreatedAt:     row.CreatedAt.Time.UTC(),
	}
}

func rowsToTips(rows []generated.Tip) []*domain.Tip {
	tips := make([]*domain.Tip, 0, len(rows))
	for _, row := range rows {
		tips = append(tips, rowToTip(row))
	}

	return tips
}
