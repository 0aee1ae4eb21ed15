package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lrcollege/tipledger/internal/adapter/http/dto"
	"github.com/lrcollege/tipledger/internal/adapter/http/middleware"
	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/usecase"
)

type tipServiceStub struct {
	giveFn         func(ctx context.Context, input usecase.GiveTipInput) (*domain.Tip, error)
	getFn          func(ctx context.Context, id string) (*domain.Tip, error)
	listSentFn     func(ctx context.Context, input usecase.ListTipsInput) ([]*domain.Tip, error)
	listReceivedFn func(ctx context.Context, input usecase.ListTipsInput) ([]*domain.Tip, error)
}

func (s *tipServiceStub) GiveTip(ctx context.Context, input usecase.GiveTipInput) (*domain.Tip, error) {
	return s.giveFn(ctx, input)
}

func (s *tipServiceStub) GetTip(ctx context.Context, id string) (*domain.Tip, error) {
	return s.getFn(ctx, id)
}

func (s *tipServiceStub) ListSentTips(ctx context.Context, input usecase.ListTipsInput) ([]*domain.Tip, error) {
	return s.listSentFn(ctx, input)
}

func (s *tipServiceStub) ListReceivedTips(ctx context.Context, input usecase.ListTipsInput) ([]*domain.Tip, error) {
	return s.listReceivedFn(ctx, input)
}

type identityServiceStub struct {
	identities map[int64]domain.Identity
	err        error
}

func (s *identityServiceStub) GetIdentities(_ context.Context, ids []int64) (map[int64]domain.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[int64]domain.Identity, len(ids))
	for _, id := range ids {
		if identity, ok := s.identities[id]; ok {
			out[id] = identity
		}
	}
	return out, nil
}

func testIdentities() *identityServiceStub {
	return &identityServiceStub{identities: map[int64]domain.Identity{
		1: {ID: 1, Email: "ada@example.edu", FirstName: "Ada", LastName: "Lovelace", Role: domain.RoleStudent},
		2: {ID: 2, Email: "alan@example.edu", FirstName: "Alan", LastName: "Turing", Role: domain.RoleTeacher},
	}}
}

func asCaller(req *http.Request, accountID int64) *http.Request {
	ctx := middleware.WithCaller(req.Context(), domain.Caller{AccountID: accountID})
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return resp
}

func sampleTip() *domain.Tip {
	memo := "great lecture"
	return &domain.Tip{
		ID:            "01HZX3P9J2V6K8Q4R5S7T9W0YA",
		FromAccountID: 1,
		ToAccountID:   2,
		Amount:        decimal.RequireFromString("20.00"),
		Memo:          &memo,
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestTipHandler_Give_Success(t *testing.T) {
	var captured usecase.GiveTipInput
	h := NewTipHandler(&tipServiceStub{
		giveFn: func(_ context.Context, input usecase.GiveTipInput) (*domain.Tip, error) {
			captured = input
			return sampleTip(), nil
		},
	}, testIdentities())

	body, _ := json.Marshal(dto.GiveTipRequest{ToAccountID: 2, Amount: "20.00", Memo: "great lecture"})
	req := asCaller(httptest.NewRequest(http.MethodPost, "/api/v1/tips", bytes.NewReader(body)), 1)
	rec := httptest.NewRecorder()

	h.Give(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.FromAccountID != 1 || captured.ToAccountID != 2 {
		t.Fatalf("unexpected input: %+v", captured)
	}
	if !captured.Amount.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("unexpected amount: %s", captured.Amount)
	}

	var resp dto.TipResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Sender.Email != "ada@example.edu" || resp.Receiver.FirstName != "Alan" {
		t.Fatalf("identities not nested: %+v", resp)
	}
	if resp.Amount != "20.00" {
		t.Fatalf("expected amount 20.00, got %s", resp.Amount)
	}
}

func TestTipHandler_Give_IgnoresSenderInBody(t *testing.T) {
	var captured usecase.GiveTipInput
	h := NewTipHandler(&tipServiceStub{
		giveFn: func(_ context.Context, input usecase.GiveTipInput) (*domain.Tip, error) {
			captured = input
			return sampleTip(), nil
		},
	}, testIdentities())

	body := []byte(`{"from_account_id": 2, "to_account_id": 2, "amount": "1.00"}`)
	req := asCaller(httptest.NewRequest(http.MethodPost, "/api/v1/tips", bytes.NewReader(body)), 1)
	rec := httptest.NewRecorder()

	h.Give(rec, req)

	if captured.FromAccountID != 1 {
		t.Fatalf("sender must come from the token, got %d", captured.FromAccountID)
	}
}

func TestTipHandler_Give_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest, "invalid_request"},
		{"unparseable amount", `{"to_account_id": 2, "amount": "ten"}`, nil, http.StatusBadRequest, "invalid_amount"},
		{"self transfer", `{"to_account_id": 1, "amount": "1.00"}`, domain.ErrSelfTransfer, http.StatusBadRequest, "self_transfer"},
		{"unknown receiver", `{"to_account_id": 9, "amount": "1.00"}`, domain.NewAccountNotFoundError(9), http.StatusBadRequest, "account_not_found"},
		{"insufficient", `{"to_account_id": 2, "amount": "10.01"}`, domain.ErrInsufficientBalance, http.StatusBadRequest, "insufficient_balance"},
		{"conflict", `{"to_account_id": 2, "amount": "1.00"}`, domain.ErrTransactionConflict, http.StatusServiceUnavailable, "transaction_conflict"},
		{"internal", `{"to_account_id": 2, "amount": "1.00"}`, errors.New("disk full"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTipHandler(&tipServiceStub{
				giveFn: func(context.Context, usecase.GiveTipInput) (*domain.Tip, error) {
					if tt.err == nil {
						t.Fatal("use case should not be called")
					}
					return nil, tt.err
				},
			}, testIdentities())

			req := asCaller(httptest.NewRequest(http.MethodPost, "/api/v1/tips", bytes.NewBufferString(tt.body)), 1)
			rec := httptest.NewRecorder()

			h.Give(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if resp := decodeError(t, rec); resp.Error != tt.wantCode {
				t.Fatalf("expected code %s, got %s", tt.wantCode, resp.Error)
			}
		})
	}
}

func TestTipHandler_Give_RequiresCaller(t *testing.T) {
	h := NewTipHandler(&tipServiceStub{}, testIdentities())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tips", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	h.Give(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestTipHandler_Give_IdentityLookupFailureStillCreated(t *testing.T) {
	h := NewTipHandler(&tipServiceStub{
		giveFn: func(context.Context, usecase.GiveTipInput) (*domain.Tip, error) {
			return sampleTip(), nil
		},
	}, &identityServiceStub{err: errors.New("redis down")})

	body := []byte(`{"to_account_id": 2, "amount": "20.00"}`)
	req := asCaller(httptest.NewRequest(http.MethodPost, "/api/v1/tips", bytes.NewReader(body)), 1)
	rec := httptest.NewRecorder()

	h.Give(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp dto.TipResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Sender.ID != 1 || resp.Receiver.ID != 2 {
		t.Fatalf("expected bare ids, got %+v", resp)
	}
}

func TestTipHandler_Get(t *testing.T) {
	stub := &tipServiceStub{
		getFn: func(_ context.Context, id string) (*domain.Tip, error) {
			if id != sampleTip().ID {
				return nil, domain.ErrTipNotFound
			}
			return sampleTip(), nil
		},
	}
	h := NewTipHandler(stub, testIdentities())

	tests := []struct {
		name       string
		caller     int64
		id         string
		wantStatus int
	}{
		{"sender", 1, sampleTip().ID, http.StatusOK},
		{"receiver", 2, sampleTip().ID, http.StatusOK},
		{"outsider", 3, sampleTip().ID, http.StatusNotFound},
		{"unknown", 1, "nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tips/"+tt.id, nil)
			req = asCaller(withURLParam(req, "id", tt.id), tt.caller)
			rec := httptest.NewRecorder()

			h.Get(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestTipHandler_SentClampsPagination(t *testing.T) {
	var captured usecase.ListTipsInput
	h := NewTipHandler(&tipServiceStub{
		listSentFn: func(_ context.Context, input usecase.ListTipsInput) ([]*domain.Tip, error) {
			captured = input
			return []*domain.Tip{sampleTip()}, nil
		},
	}, testIdentities())

	req := asCaller(httptest.NewRequest(http.MethodGet, "/api/v1/tips/sent?limit=1000&offset=-5", nil), 1)
	rec := httptest.NewRecorder()

	h.Sent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.AccountID != 1 || captured.Limit != domain.MaxPageSize || captured.Offset != 0 {
		t.Fatalf("unexpected list input: %+v", captured)
	}

	var resp dto.TipListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Tips) != 1 || resp.Limit != domain.MaxPageSize {
		t.Fatalf("unexpected page: %+v", resp)
	}
}

func TestTipHandler_ReceivedUsesCaller(t *testing.T) {
	var captured usecase.ListTipsInput
	h := NewTipHandler(&tipServiceStub{
		listReceivedFn: func(_ context.Context, input usecase.ListTipsInput) ([]*domain.Tip, error) {
			captured = input
			return nil, nil
		},
	}, testIdentities())

	req := asCaller(httptest.NewRequest(http.MethodGet, "/api/v1/tips/received", nil), 2)
	rec := httptest.NewRecorder()

	h.Received(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.AccountID != 2 || captured.Limit != domain.DefaultPageSize {
		t.Fatalf("unexpected list input: %+v", captured)
	}

	var resp dto.TipListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Tips == nil || len(resp.Tips) != 0 {
		t.Fatalf("expected empty tips array, got %+v", resp.Tips)
	}
}
