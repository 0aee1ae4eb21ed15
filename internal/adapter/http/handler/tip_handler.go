package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/lrcollege/tipledger/internal/adapter/http/dto"
	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/usecase"
)

// TipService is the tip use case as seen by the HTTP layer.
type TipService interface {
	GiveTip(ctx context.Context, input usecase.GiveTipInput) (*domain.Tip, error)
	GetTip(ctx context.Context, id string) (*domain.Tip, error)
	ListSentTips(ctx context.Context, input usecase.ListTipsInput) ([]*domain.Tip, error)
	ListReceivedTips(ctx context.Context, input usecase.ListTipsInput) ([]*domain.Tip, error)
}

// IdentityService resolves account ids to public identities.
type IdentityService interface {
	GetIdentities(ctx context.Context, ids []int64) (map[int64]domain.Identity, error)
}

// TipHandler handles tip-related HTTP requests.
type TipHandler struct {
	tips       TipService
	identities IdentityService
}

// NewTipHandler creates a new TipHandler.
func NewTipHandler(tips TipService, identities IdentityService) *TipHandler {
	return &TipHandler{tips: tips, identities: identities}
}

// Give transfers an amount from the caller to another account.
func (h *TipHandler) Give(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req dto.GiveTipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(caller.AccountID)
	if err != nil {
		writeDomainError(w, r, err, http.StatusBadRequest)
		return
	}

	tip, err := h.tips.GiveTip(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err, http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TipFromDomain(tip, h.lookup(r, tip)))
}

// Get returns a tip the caller sent or received.
func (h *TipHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing tip ID")
		return
	}

	tip, err := h.tips.GetTip(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, http.StatusNotFound)
		return
	}
	// Other people's tips are indistinguishable from missing ones.
	if !tip.Involves(caller.AccountID) {
		writeDomainError(w, r, domain.ErrTipNotFound, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, dto.TipFromDomain(tip, h.lookup(r, tip)))
}

// Sent lists the caller's sent tips.
func (h *TipHandler) Sent(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.tips.ListSentTips)
}

// Received lists the caller's received tips.
func (h *TipHandler) Received(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.tips.ListReceivedTips)
}

func (h *TipHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(context.Context, usecase.ListTipsInput) ([]*domain.Tip, error),
) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	limit, offset := domain.ValidatePagination(
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0),
	)

	tips, err := fetch(r.Context(), usecase.ListTipsInput{
		AccountID: caller.AccountID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeDomainError(w, r, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, dto.TipListResponse{
		Tips:   dto.TipsFromDomain(tips, h.lookup(r, tips...)),
		Limit:  limit,
		Offset: offset,
	})
}

// lookup resolves the parties of tips. A failed lookup degrades the
// response to bare ids rather than failing a committed transfer.
func (h *TipHandler) lookup(r *http.Request, tips ...*domain.Tip) map[int64]domain.Identity {
	ids := dto.TipAccountIDs(tips...)
	if len(ids) == 0 {
		return nil
	}

	identities, err := h.identities.GetIdentities(r.Context(), ids)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("identity lookup failed")
		return nil
	}
	return identities
}
