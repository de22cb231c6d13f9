package social

import (
	"context"

	"github.com/google/uuid"
)

type userIDContextKey struct{}

// SetUserID stores the authenticated user's ID in the context. Session
// middleware calls this before the request reaches the module.
func SetUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext retrieves the authenticated user's ID.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDContextKey{}).(uuid.UUID)
	return userID, ok
}
