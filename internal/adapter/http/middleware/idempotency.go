package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lrcollege/tipledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"
)

// IdempotencyMiddleware replays the stored response of a successful POST
// sent again with the same Idempotency-Key. Keys are scoped to the caller.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. A zero ttl
// uses usecase.IdempotencyKeyTTL.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		if caller, ok := CallerFromContext(r.Context()); ok {
			key = strconv.FormatInt(caller.AccountID, 10) + ":" + key
		}

		ctx := r.Context()
		logger := zerolog.Ctx(ctx)

		exists, cached, err := m.store.CheckAndSet(ctx, key, nil, m.ttl)
		if err != nil {
			logger.Error().Err(err).Msg("idempotency check failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "idempotency check failed")
			return
		}

		if exists {
			if len(cached) == 0 || string(cached) == usecase.IdempotencyPending {
				writeError(w, http.StatusConflict, "request_in_progress", "a request with this idempotency key is in progress")
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(IdempotencyReplayHeader, "true")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(cached)
			return
		}

		// Record the outcome even after the client disconnects.
		storeCtx := context.WithoutCancel(ctx)

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}

		completed := false
		defer func() {
			if completed {
				return
			}
			if err := m.store.Release(storeCtx, key); err != nil {
				logger.Warn().Err(err).Msg("failed to release idempotency key after panic")
			}
		}()

		next.ServeHTTP(recorder, r)
		completed = true

		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			if err := m.store.Update(storeCtx, key, recorder.body.Bytes(), m.ttl); err != nil {
				logger.Warn().Err(err).Msg("failed to store idempotent response")
			}
			return
		}

		// A rejected request may be retried with the same key.
		if err := m.store.Release(storeCtx, key); err != nil {
			logger.Warn().Err(err).Msg("failed to release idempotency key")
		}
	})
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
