package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/greenloop/recycle-be/internal/auth"
	"github.com/greenloop/recycle-be/internal/http/respond"
)

type contextKey string

const identityKey contextKey = "identityToken"

// RequireAuth validates the bearer token and stores the caller's identity
// token in the request context. It authenticates only: privileged handlers
// re-fetch the caller from the directory before acting, so a stale admin flag
// in a live session can never authorize anything.
func RequireAuth(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			respond.Error(w, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}
		identity, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the authenticated caller's identity token.
func IdentityFromContext(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityKey).(string)
	return identity, ok && identity != ""
}
