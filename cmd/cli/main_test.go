package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrcollege/tipledger/internal/adapter/http/dto"
	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/infrastructure/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
	assert.Equal(t, "lo", truncate("longerstring", 2))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))

	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestTipGive(t *testing.T) {
	var (
		gotAuth string
		gotKey  string
		gotBody dto.GiveTipRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tips", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dto.TipResponse{ID: "tip-1", Amount: "20.00"})
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "--token", "tok", "tip", "give", "2", "20.00", "--memo", "thanks", "--idempotency-key", "k1")
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "k1", gotKey)
	assert.Equal(t, dto.GiveTipRequest{ToAccountID: 2, Amount: "20.00", Memo: "thanks"}, gotBody)
	assert.Contains(t, out, `"id": "tip-1"`)
}

func TestTipGive_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "insufficient_balance", Message: "insufficient balance"})
	}))
	defer srv.Close()

	_, err := execute(t, "--url", srv.URL, "tip", "give", "2", "10.01")

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "insufficient_balance", apiErr.Code)
}

func TestTipGive_RejectsBadAccountID(t *testing.T) {
	_, err := execute(t, "tip", "give", "bob", "1.00")

	assert.ErrorContains(t, err, "invalid account id")
}

func TestTipSent_PrintsTable(t *testing.T) {
	memo := strings.Repeat("m", 40)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tips/sent", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(dto.TipListResponse{
			Tips: []*dto.TipResponse{{
				ID:        "tip-1",
				Sender:    domain.Identity{ID: 1, Email: "ada@example.edu"},
				Receiver:  domain.Identity{ID: 2},
				Amount:    "1.00",
				Memo:      &memo,
				CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			}},
			Limit: 5,
		})
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "tip", "sent", "--limit", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "1 (ada@example.edu)")
	assert.Contains(t, out, truncate(memo, memoWidth))
	assert.NotContains(t, out, memo)
	assert.Contains(t, out, "2026-01-02T03:04:05Z")
}

func TestLedgerConsistency(t *testing.T) {
	consistent := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(dto.ConsistencyResponse{
			Consistent:   consistent,
			TotalBalance: "55.00",
			TipVolume:    "20.00",
			AccountCount: 2,
			TipCount:     1,
		})
	}))
	defer srv.Close()

	out, err := execute(t, "--url", srv.URL, "ledger", "consistency")
	require.NoError(t, err)
	assert.Contains(t, out, "Consistency check PASSED")
	assert.Contains(t, out, "55.00")

	consistent = false
	_, err = execute(t, "--url", srv.URL, "ledger", "consistency")
	assert.ErrorContains(t, err, "FAILED")
}

func TestTokenCmd(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")

	out, err := execute(t, "token", "42", "--email", "ada@example.edu")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("cli-secret", time.Hour).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, "ada@example.edu", claims.Email)
}

func TestTokenCmd_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "token", "42")

	assert.ErrorContains(t, err, "JWT_SECRET")
}
