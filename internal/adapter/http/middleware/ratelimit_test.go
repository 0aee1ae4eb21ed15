package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/lrcollege/tipledger/internal/infrastructure/metrics"
)

func TestRateLimiter_PerIP(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	rl := NewRateLimiter(1, 2).WithMetrics(m)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tips/sent", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHits))
}

func TestRateLimiter_CleanupLimiters(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter("10.0.0.1")
	rl.getLimiter("10.0.0.2")

	assert.Equal(t, 0, rl.CleanupLimiters(time.Hour))

	rl.mu.Lock()
	rl.limiters["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Hour)
	rl.mu.Unlock()

	assert.Equal(t, 1, rl.CleanupLimiters(time.Hour))
	assert.Len(t, rl.limiters, 1)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	assert.Equal(t, "192.168.1.5", clientIP(req))

	req.RemoteAddr = "192.168.1.5"
	assert.Equal(t, "192.168.1.5", clientIP(req))
}
