package handler

import (
	"context"
	"net/http"

	"github.com/lrcollege/tipledger/internal/adapter/http/dto"
	"github.com/lrcollege/tipledger/internal/usecase"
)

// LedgerService reports ledger-wide totals.
type LedgerService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
}

// LedgerHandler handles ledger HTTP requests.
type LedgerHandler struct {
	ledger LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Consistency returns balance and tip totals.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.CheckConsistency(r.Context())
	if err != nil {
		writeDomainError(w, r, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report))
}
