package handler

import (
	"context"
	"net/http"

	"github.com/lrcollege/tipledger/internal/adapter/http/dto"
	"github.com/lrcollege/tipledger/internal/domain"
)

// AccountService is the account use case as seen by the HTTP layer.
type AccountService interface {
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Me returns the caller's account including its balance.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), caller.AccountID)
	if err != nil {
		writeDomainError(w, r, err, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
