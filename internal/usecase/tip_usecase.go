package usecase

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lrcollege/tipledger/internal/domain"
)

// TipUseCase moves balance between two accounts and records the movement
// as a tip.
type TipUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	tipRepo     TipRepository
	idGen       IDGenerator
	retrier     Retrier
	metrics     TipMetrics
	txTimeout   time.Duration
}

// TipOption configures a TipUseCase.
type TipOption func(*TipUseCase)

// WithRetrier retries attempts that fail with domain.ErrTransactionConflict.
func WithRetrier(r Retrier) TipOption {
	return func(uc *TipUseCase) {
		if r != nil {
			uc.retrier = r
		}
	}
}

// WithMetrics records tip outcomes.
func WithMetrics(m TipMetrics) TipOption {
	return func(uc *TipUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithTransactionTimeout overrides DefaultTransactionTimeout.
func WithTransactionTimeout(d time.Duration) TipOption {
	return func(uc *TipUseCase) {
		if d > 0 {
			uc.txTimeout = d
		}
	}
}

// NewTipUseCase creates a new TipUseCase.
func NewTipUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	tipRepo TipRepository,
	idGen IDGenerator,
	opts ...TipOption,
) *TipUseCase {
	uc := &TipUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		tipRepo:     tipRepo,
		idGen:       idGen,
		retrier:     noRetry{},
		metrics:     nopMetrics{},
		txTimeout:   DefaultTransactionTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// GiveTipInput represents input for giving a tip.
type GiveTipInput struct {
	Memo          string
	FromAccountID int64
	ToAccountID   int64
	Amount        decimal.Decimal
}

// GiveTip debits FromAccountID, credits ToAccountID and records the tip in
// a single transaction.
func (uc *TipUseCase) GiveTip(ctx context.Context, input GiveTipInput) (*domain.Tip, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx).With().
		Int64("from_account_id", input.FromAccountID).
		Int64("to_account_id", input.ToAccountID).
		Str("amount", input.Amount.String()).
		Logger()

	var tip *domain.Tip

	err := uc.retrier.Retry(ctx, func() error {
		var err error
		tip, err = uc.attempt(ctx, input)
		return err
	})
	if err != nil {
		reason := FailureReason(err)
		uc.metrics.TipFailed(reason)

		if reason == ReasonInternal {
			logger.Error().Err(err).Msg("tip failed")
		} else {
			logger.Info().Err(err).Str("reason", reason).Msg("tip rejected")
		}

		return nil, err
	}

	uc.metrics.TipCreated(tip.Amount, time.Since(start))
	logger.Debug().Str("tip_id", tip.ID).Msg("tip committed")

	return tip, nil
}

func (uc *TipUseCase) attempt(ctx context.Context, input GiveTipInput) (*domain.Tip, error) {
	// 0. Validate inputs before touching the store
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSelfTransfer
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateMemo(input.Memo); err != nil {
		return nil, err
	}

	// 1. Both accounts must exist
	ids := []int64{input.FromAccountID, input.ToAccountID}

	existing, err := uc.accountRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	if missing := missingIDs(ids, existing); len(missing) > 0 {
		return nil, domain.NewAccountNotFoundError(missing...)
	}

	// 2. Sort account IDs (DEADLOCK PREVENTION)
	slices.Sort(ids)

	ctx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	// 3. Begin transaction
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 4. Lock accounts in sorted order and re-read balances under lock
	locked, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	if missing := missingIDs(ids, locked); len(missing) > 0 {
		return nil, domain.NewAccountNotFoundError(missing...)
	}

	accountMap := buildAccountMap(locked)
	from := accountMap[input.FromAccountID]
	to := accountMap[input.ToAccountID]

	// 5. Reject overdraft and receiver overflow
	if err := from.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	if err := to.ValidateCredit(input.Amount); err != nil {
		return nil, err
	}

	// 6. Apply both balance changes and append the tip
	now := time.Now().UTC().Truncate(time.Microsecond)

	if err := uc.accountRepo.UpdateBalance(ctx, tx, from.ID, from.ApplyDebit(input.Amount), now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, to.ID, to.ApplyCredit(input.Amount), now); err != nil {
		return nil, err
	}

	tip := &domain.Tip{
		ID:            uc.idGen.Generate(),
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        input.Amount,
		CreatedAt:     now,
	}
	if input.Memo != "" {
		memo := input.Memo
		tip.Memo = &memo
	}

	if err := tip.Validate(); err != nil {
		return nil, err
	}

	if err := uc.tipRepo.Create(ctx, tx, tip); err != nil {
		return nil, err
	}

	// 7. Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return tip, nil
}

// GetTip retrieves a tip by ID.
func (uc *TipUseCase) GetTip(ctx context.Context, id string) (*domain.Tip, error) {
	return uc.tipRepo.GetByID(ctx, id)
}

// ListTipsInput represents input for listing an account's tips.
type ListTipsInput struct {
	AccountID int64
	Limit     int
	Offset    int
}

// ListSentTips lists tips given by an account, newest first.
func (uc *TipUseCase) ListSentTips(ctx context.Context, input ListTipsInput) ([]*domain.Tip, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.tipRepo.ListSent(ctx, input.AccountID, limit, offset)
}

// ListReceivedTips lists tips received by an account, newest first.
func (uc *TipUseCase) ListReceivedTips(ctx context.Context, input ListTipsInput) ([]*domain.Tip, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.tipRepo.ListReceived(ctx, input.AccountID, limit, offset)
}

// Failure reasons reported to TipMetrics.
const (
	ReasonSelfTransfer        = "self_transfer"
	ReasonInvalidAmount       = "invalid_amount"
	ReasonInvalidMemo         = "invalid_memo"
	ReasonAccountNotFound     = "account_not_found"
	ReasonInsufficientBalance = "insufficient_balance"
	ReasonConflict            = "transaction_conflict"
	ReasonInternal            = "internal"
)

// FailureReason classifies a GiveTip error.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrSelfTransfer):
		return ReasonSelfTransfer
	case errors.Is(err, domain.ErrInvalidAmount):
		return ReasonInvalidAmount
	case errors.Is(err, domain.ErrInvalidMemo):
		return ReasonInvalidMemo
	case errors.Is(err, domain.ErrAccountNotFound):
		return ReasonAccountNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return ReasonInsufficientBalance
	case errors.Is(err, domain.ErrTransactionConflict):
		return ReasonConflict
	default:
		return ReasonInternal
	}
}

func missingIDs(ids []int64, accounts []*domain.Account) []int64 {
	found := buildAccountMap(accounts)

	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}

	return missing
}

func buildAccountMap(accounts []*domain.Account) map[int64]*domain.Account {
	m := make(map[int64]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a
	}

	return m
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error {
	return operation()
}

type nopMetrics struct{}

func (nopMetrics) TipCreated(decimal.Decimal, time.Duration) {}
func (nopMetrics) TipFailed(string)                          {}
