package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/nexorahq/go-auth/middleware/authware"
)

// RouteAuthenticator wires the Auther into HTTP routing: it builds the
// authentication middleware and the guards that protected routes compose.
type RouteAuthenticator struct {
	auth           *Auther
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
	ErrorHandler   func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther *Auther, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	a := &RouteAuthenticator{
		cfg:            cfg,
		auth:           auther,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// TokenMiddleware returns the silent authentication middleware. Requests with
// a valid live token get an identity in the context; everything else passes
// through unauthenticated.
func (a *RouteAuthenticator) TokenMiddleware() router.MiddlewareFunc {
	return authware.New(authware.Config{
		Verifier:    verifierAdapter{auther: a.auth},
		ContextKey:  a.cfg.GetContextKey(),
		TokenLookup: a.cfg.GetTokenLookup(),
		AuthScheme:  a.cfg.GetAuthScheme(),
		ContextEnricher: func(c context.Context, identity authware.Identity, claims authware.AuthClaims) context.Context {
			if id, ok := identity.(Identity); ok {
				c = WithAccountContext(c, id)
			}
			if ac, ok := claims.(AuthClaims); ok {
				c = WithClaimsContext(c, ac)
			}
			return c
		},
		OnAuthFailure: func(ctx router.Context, err error) {
			a.Logger.Debug("request authentication failed, proceeding anonymous: %v", err)
		},
	})
}

// ProtectedRoute composes the authentication middleware with the
// authenticated-only guard.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.ErrorHandler
	}

	authenticate := a.TokenMiddleware()
	require := authware.RequireAuthenticated(authware.RequireConfig{
		ContextKey:   a.cfg.GetContextKey(),
		ErrorHandler: errorHandler,
	})

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return authenticate(require(hf))
	}
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"request rejected: %s (%s)",
		richErr.Message,
		richErr.TextCode,
	)

	code := richErr.Code
	if code == 0 {
		code = router.StatusUnauthorized
	}

	return c.JSON(code, map[string]any{
		"error":     richErr.Message,
		"text_code": richErr.TextCode,
	})
}

// verifierAdapter translates the Auther's typed results into the interface
// shapes the middleware package declares.
type verifierAdapter struct {
	auther *Auther
}

func (v verifierAdapter) Verify(ctx context.Context, raw string) (authware.Identity, authware.AuthClaims, error) {
	identity, claims, err := v.auther.Verify(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	return identity, claims, nil
}
