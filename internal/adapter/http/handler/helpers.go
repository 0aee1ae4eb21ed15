package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/lrcollege/tipledger/internal/adapter/http/dto"
	"github.com/lrcollege/tipledger/internal/adapter/http/middleware"
	"github.com/lrcollege/tipledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// mapDomainError maps domain errors to an HTTP status and error code.
// notFound is the status used for a missing account, which is a client
// error on writes and a plain 404 on reads.
func mapDomainError(err error, notFound int) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSelfTransfer):
		return http.StatusBadRequest, "self_transfer"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, domain.ErrInvalidMemo):
		return http.StatusBadRequest, "invalid_memo"
	case errors.Is(err, domain.ErrAccountNotFound):
		return notFound, "account_not_found"
	case errors.Is(err, domain.ErrTipNotFound):
		return http.StatusNotFound, "tip_not_found"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusBadRequest, "insufficient_balance"
	case errors.Is(err, domain.ErrTransactionConflict):
		return http.StatusServiceUnavailable, "transaction_conflict"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeDomainError maps err and writes it. Internal errors are logged and
// their text is not exposed.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, notFound int) {
	status, code := mapDomainError(err, notFound)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, status, code, "internal server error")
		return
	}
	writeError(w, status, code, err.Error())
}

// callerFrom returns the authenticated caller or writes a 401.
func callerFrom(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", domain.ErrUnauthorized.Error())
		return domain.Caller{}, false
	}
	return caller, true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
