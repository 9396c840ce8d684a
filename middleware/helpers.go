package middleware

import (
	"context"

	"github.com/Dosada05/clubhub/services"
)

func GetIdentityFromContext(ctx context.Context) (*services.Identity, error) {
	id, ok := ctx.Value(identityContextKey).(*services.Identity)
	if !ok || id == nil {
		return nil, services.ErrSessionInvalid
	}
	return id, nil
}

func GetClaimsFromContext(ctx context.Context) (*services.SessionClaims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*services.SessionClaims)
	if !ok || claims == nil {
		return nil, services.ErrSessionInvalid
	}
	return claims, nil
}

// WithIdentity stores id in ctx the way Authenticate does.
func WithIdentity(ctx context.Context, id *services.Identity, claims *services.SessionClaims) context.Context {
	ctx = context.WithValue(ctx, identityContextKey, id)
	if claims != nil {
		ctx = context.WithValue(ctx, claimsContextKey, claims)
	}
	return ctx
}
