package middlewares

import (
	"context"

	"github.com/5w1tchy/library-api/internal/models"
)

const currentUserKey ctxKey = 1

func WithCurrentUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// CurrentUserFrom returns the identity resolved by the Auth middleware.
// ok is false for anonymous requests.
func CurrentUserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(currentUserKey).(models.User)
	return u, ok && !u.ID.IsZero()
}
