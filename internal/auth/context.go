package auth

import (
	"context"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
)

type (
	authKey struct{}
	userKey struct{}
)

// ContextWithAuth attaches the verified token claims to ctx.
func ContextWithAuth(ctx context.Context, ac *model.AuthContext) context.Context {
	return context.WithValue(ctx, authKey{}, ac)
}

// AuthFromContext returns the verified token claims, or nil for anonymous requests.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	ac, _ := ctx.Value(authKey{}).(*model.AuthContext)
	return ac
}

// UserIDFromContext returns the authenticated user id, or "" when anonymous.
func UserIDFromContext(ctx context.Context) string {
	if ac := AuthFromContext(ctx); ac != nil {
		return ac.UserID
	}
	return ""
}

// ContextWithUser attaches the user the token belongs to.
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey{}).(*model.User)
	return user
}
