package authware

import (
	"context"
	"errors"

	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup       = "header:" + router.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// TokenVerifier validates a raw token end to end without import cycles.
// This mirrors the Auther.Verify method from the auth package.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (Identity, AuthClaims, error)
}

// Identity interface for authenticated accounts without import cycles
// This mirrors the Identity interface from the auth package
type Identity interface {
	ID() string
	Email() string
	Role() string
	Authorities() []string
}

// AuthClaims interface for structured claims without import cycles
// This mirrors the AuthClaims interface from the auth package
type AuthClaims interface {
	Subject() string
	Role() string
}

// ValidationListener is invoked after a token has been verified but before
// the identity is attached to the request.
type ValidationListener func(ctx router.Context, identity Identity, claims AuthClaims) error

type Config struct {
	// Filter skips the middleware entirely when it returns true.
	Filter func(router.Context) bool

	// Verifier is required. It performs signature, expiry, liveness, and
	// subject checks in one call.
	Verifier TokenVerifier

	// ContextKey is the router locals key the identity is stored under.
	ContextKey string
	// ClaimsContextKey is the router locals key the claims are stored under.
	ClaimsContextKey string

	TokenLookup string
	AuthScheme  string

	// ContextEnricher propagates the identity and claims to the standard Go
	// context after a successful verification.
	ContextEnricher func(c context.Context, identity Identity, claims AuthClaims) context.Context

	// ValidationListeners are invoked after verification succeeds. Use them
	// to emit events or perform bookkeeping before the request proceeds.
	ValidationListeners []ValidationListener

	// OnAuthFailure observes verification failures. The request continues
	// unauthenticated either way; the hook exists for logging and metrics.
	OnAuthFailure func(ctx router.Context, err error)
}

// New returns middleware that authenticates requests when it can and stays
// out of the way when it cannot. A missing, malformed, expired, or revoked
// token never fails the request here; the handler chain continues without an
// identity and route guards decide what anonymous requests may do.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil || raw == "" {
				return ctx.Next()
			}

			identity, claims, err := cfg.Verifier.Verify(ctx.Context(), raw)
			if err != nil {
				if cfg.OnAuthFailure != nil {
					cfg.OnAuthFailure(ctx, err)
				}
				return ctx.Next()
			}

			if err := cfg.runValidationListeners(ctx, identity, claims); err != nil {
				if cfg.OnAuthFailure != nil {
					cfg.OnAuthFailure(ctx, err)
				}
				return ctx.Next()
			}

			ctx.Locals(cfg.ContextKey, identity)
			ctx.Locals(cfg.ClaimsContextKey, claims)

			if cfg.ContextEnricher != nil {
				stdCtx := cfg.ContextEnricher(ctx.Context(), identity, claims)
				ctx.SetContext(stdCtx)
			}

			return ctx.Next()
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Verifier == nil {
		panic("AUTH: middleware configuration: Verifier is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.ClaimsContextKey == "" {
		cfg.ClaimsContextKey = "claims"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(ctx router.Context, identity Identity, claims AuthClaims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(ctx, identity, claims); err != nil {
			return err
		}
	}
	return nil
}

// IdentityFromContext returns the identity the middleware stored in the
// router locals, if any.
func IdentityFromContext(ctx router.Context, key string) (Identity, bool) {
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
