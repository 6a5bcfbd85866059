package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/5w1tchy/library-api/internal/api/httpx"
	"github.com/5w1tchy/library-api/internal/models"
	jwtutil "github.com/5w1tchy/library-api/internal/security/jwt"
	"github.com/5w1tchy/library-api/internal/store/users"
)

// UserFinder resolves a token subject to a user record.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Auth resolves an optional Bearer token into the request's currentUser.
//
// No Authorization header (or one without a Bearer prefix) is not an error:
// the request proceeds anonymously and protected mutations reject it
// themselves. A present-but-invalid token fails the whole request before the
// GraphQL executor runs.
func Auth(secret []byte, finder UserFinder, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		tokenStr, ok := bearer(raw)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := jwtutil.Parse(secret, tokenStr)
		if err != nil {
			httpx.ErrorCode(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
			return
		}
		u, err := finder.FindByID(r.Context(), claims.UserID)
		if errors.Is(err, users.ErrNotFound) {
			// Token outlived its user; treat as anonymous.
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			httpx.ErrorCode(w, http.StatusInternalServerError, "store_error", "failed to load user")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCurrentUser(r.Context(), u)))
	})
}

func bearer(h string) (string, bool) {
	if len(h) < len("bearer ") || !strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return "", false
	}
	return strings.TrimSpace(h[len("bearer "):]), true
}
