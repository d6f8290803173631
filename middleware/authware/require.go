package authware

import (
	"errors"

	"github.com/goliatone/go-router"
)

// ErrAuthorityMissing marks an authenticated request that lacks the required
// permission. Guards surface it through their ErrorHandler.
var ErrAuthorityMissing = errors.New("missing required authority")

// RequireConfig controls the route guards.
type RequireConfig struct {
	// ContextKey must match the key the authentication middleware stores the
	// identity under.
	ContextKey string
	// ErrorHandler renders the rejection. Defaults to a plain status response.
	ErrorHandler router.ErrorHandler
}

func getRequireConfig(config ...RequireConfig) (cfg RequireConfig) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			if errors.Is(err, ErrAuthorityMissing) {
				return c.Status(router.StatusForbidden).SendString("Forbidden")
			}
			return c.Status(router.StatusUnauthorized).SendString("Unauthorized")
		}
	}

	return cfg
}

// RequireAuthenticated rejects requests that reached the handler without an
// identity. The authentication middleware never rejects on its own, so this
// guard is what turns a silent authentication failure into a 401.
func RequireAuthenticated(config ...RequireConfig) router.MiddlewareFunc {
	cfg := getRequireConfig(config...)
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if _, ok := IdentityFromContext(ctx, cfg.ContextKey); !ok {
				return cfg.ErrorHandler(ctx, ErrJWTMissingOrMalformed)
			}
			return ctx.Next()
		}
	}
}

// RequireAuthority rejects authenticated requests whose identity does not
// carry the given permission string. Anonymous requests are rejected too.
func RequireAuthority(authority string, config ...RequireConfig) router.MiddlewareFunc {
	cfg := getRequireConfig(config...)
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			identity, ok := IdentityFromContext(ctx, cfg.ContextKey)
			if !ok {
				return cfg.ErrorHandler(ctx, ErrJWTMissingOrMalformed)
			}

			for _, a := range identity.Authorities() {
				if a == authority {
					return ctx.Next()
				}
			}

			return cfg.ErrorHandler(ctx, ErrAuthorityMissing)
		}
	}
}
