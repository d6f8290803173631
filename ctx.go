package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var accountCtxKey = &contextKey{"account"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithAccountContext sets the Identity in the given context
func WithAccountContext(r context.Context, identity Identity) context.Context {
	return context.WithValue(r, accountCtxKey, identity)
}

// AccountFromContext finds the authenticated identity from the context.
func AccountFromContext(ctx context.Context) (Identity, bool) {
	raw, ok := ctx.Value(accountCtxKey).(Identity)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetRouterIdentity extracts the authenticated identity from the router
// context.
func GetRouterIdentity(ctx router.Context, key string) (Identity, bool) {
	if key == "" {
		key = "user"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	identity, ok := raw.(Identity)
	return identity, ok
}

// HasAuthority checks whether the authenticated identity in the context
// carries the given permission string.
func HasAuthority(ctx context.Context, authority string) bool {
	identity, ok := AccountFromContext(ctx)
	if !ok {
		return false
	}

	for _, a := range identity.Authorities() {
		if a == authority {
			return true
		}
	}

	return false
}

// HasRoleAtLeast checks whether the authenticated identity in the context
// holds minRole or a role above it.
func HasRoleAtLeast(ctx context.Context, minRole Role) bool {
	identity, ok := AccountFromContext(ctx)
	if !ok {
		return false
	}

	return RoleIsAtLeast(identity.Role(), minRole)
}
