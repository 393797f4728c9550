package middleware

import (
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/bookcart/internal/models"
	"github.com/vaughan-dsouza/bookcart/internal/session"
	"github.com/vaughan-dsouza/bookcart/internal/token"
	"github.com/vaughan-dsouza/bookcart/internal/utils"
)

// Verifier validates a raw bearer token.
type Verifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Auth requires "Authorization: Bearer <token>". A missing or non-bearer
// header is 401; a token that fails verification or was revoked is 403.
func Auth(v Verifier, revoked session.Revoker) func(http.Handler) http.Handler {
	if revoked == nil {
		revoked = session.Noop{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				utils.JSONError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				utils.Logger(r.Context()).Error("revocation check failed", "err", err)
				utils.JSONError(w, http.StatusInternalServerError, "Server error")
				return
			}
			if isRevoked {
				utils.JSONError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			// role comes from the token as issued; the user row is not re-read
			ctx := utils.WithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose token role is not admin. It must run
// after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := utils.ClaimsFrom(r.Context())
		if !ok || claims.Role != models.RoleAdmin {
			utils.JSONError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}

	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", false
	}
	return tok, true
}
