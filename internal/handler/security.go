package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/freshbasket/orderd/internal/domain/auth"
)

// claimsKey is the context key for verified token claims.
type claimsKey struct{}

// ClaimsFromContext returns the verified claims stored by the auth
// middleware, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// requireAuth rejects requests without a valid bearer token: a missing header
// is 401, a present but invalid or expired token is 403.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw, ok := bearerToken(r)
		if !ok {
			respondMessage(ctx, w, http.StatusUnauthorized, "authorization required")
			return
		}

		claims, err := h.tokens.Parse(raw)
		if err != nil {
			respondMessage(ctx, w, http.StatusForbidden, "invalid or expired token")
			return
		}

		next(w, r.WithContext(context.WithValue(ctx, claimsKey{}, claims)))
	}
}

// optionalAuth verifies a bearer token when one is supplied and lets
// anonymous requests through untouched. A supplied-but-invalid token is
// still rejected with 403.
func (h *Handler) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw, ok := bearerToken(r)
		if !ok {
			next(w, r)
			return
		}

		claims, err := h.tokens.Parse(raw)
		if err != nil {
			respondMessage(ctx, w, http.StatusForbidden, "invalid or expired token")
			return
		}

		next(w, r.WithContext(context.WithValue(ctx, claimsKey{}, claims)))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
