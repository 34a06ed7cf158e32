package httpx

import (
	"context"
	"net/http"
	"strings"

	"libraryapi/internal/platform/crypto"
)

// AccountChecker reports whether a token subject still has an account.
// Tokens outlive deleted accounts, so the middleware asks before trusting one.
type AccountChecker interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

func AuthMiddleware(secret string, accounts AccountChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token", nil)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
				return
			}

			if accounts != nil {
				exists, err := accounts.Exists(r.Context(), claims.Sub)
				if err != nil {
					JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
					return
				}
				if !exists {
					JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Account no longer exists", nil)
					return
				}
			}

			ctx := ContextWithUser(r.Context(), claims.Sub, claims.Admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
