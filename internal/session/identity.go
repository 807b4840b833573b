package session

import (
	"context"
	"errors"

	"console-service/internal/model"
	"console-service/internal/store"

	"go.uber.org/zap"
)

// Identity resolves the acting user from the session claims carried in the
// request context. There is no fallback identity: a missing or stale session
// resolves to no user.
type Identity struct {
	Store store.Store
}

// CurrentUser returns the user for the current session, or nil when the
// request is unauthenticated.
func (i *Identity) CurrentUser(ctx context.Context) (*model.User, error) {
	claims := ClaimsFrom(ctx)
	if claims == nil {
		return nil, nil
	}

	user, err := i.Store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Session refers to a deleted user; treat as unauthenticated.
			zap.L().Warn("session user no longer exists", zap.String("user_id", claims.UserID))
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
