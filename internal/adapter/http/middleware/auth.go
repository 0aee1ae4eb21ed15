package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/lrcollege/tipledger/internal/domain"
	"github.com/lrcollege/tipledger/internal/infrastructure/auth"
	"github.com/lrcollege/tipledger/internal/infrastructure/metrics"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// CallerContextKey is the context key for the authenticated caller
	CallerContextKey ContextKey = "caller"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller in the request context. m may be nil.
func AuthMiddleware(verifier TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				authFailed(w, m, "missing_header", "missing authorization header")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				authFailed(w, m, "bad_scheme", "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired_token"
				}
				authFailed(w, m, reason, err.Error())
				return
			}

			ctx := WithCaller(r.Context(), claims.Caller())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authFailed(w http.ResponseWriter, m *metrics.Metrics, reason, message string) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
	writeError(w, http.StatusUnauthorized, "unauthorized", message)
}

// WithCaller returns a copy of ctx carrying caller.
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, CallerContextKey, caller)
}

// CallerFromContext extracts the authenticated caller from context
func CallerFromContext(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(CallerContextKey).(domain.Caller)
	return caller, ok
}
