package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/myfinance/finauth/internal/server/auth"
)

type ctxKey int

const claimsKey ctxKey = 0

// ClaimsFromContext returns the verified claims stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// bearerToken extracts the token from the Authorization header, or "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

// RequireAuth authenticates the bearer token (signature, expiry, kind, and
// revocation) and stores the claims in the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.writeError(r.Context(), w, errMissingAuth)
			return
		}

		claims, err := h.svc.Authenticate(r.Context(), token)
		if err != nil {
			h.writeError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
