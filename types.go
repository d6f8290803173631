package auth

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface this package needs.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity.
type Identity interface {
	ID() string
	Email() string
	Role() Role
	Authorities() []string
}

// IdentityDirectory resolves account identities. VerifyIdentity must return
// ErrInvalidCredentials for unknown identifiers and wrong passwords alike.
type IdentityDirectory interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (Identity, error)
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Config holds auth options.
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetRefreshTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// SimpleConfig is a plain struct Config implementation for callers that do
// not have their own configuration container.
type SimpleConfig struct {
	SigningKey             string
	SigningMethod          string
	ContextKey             string
	TokenExpiration        int
	RefreshTokenExpiration int
	TokenLookup            string
	AuthScheme             string
	Issuer                 string
	Audience               []string
}

func (c SimpleConfig) GetSigningKey() string    { return c.SigningKey }
func (c SimpleConfig) GetSigningMethod() string { return c.SigningMethod }

func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

// GetTokenExpiration is the access token TTL in hours.
func (c SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration == 0 {
		return 1
	}
	return c.TokenExpiration
}

// GetRefreshTokenExpiration is the refresh token TTL in hours.
func (c SimpleConfig) GetRefreshTokenExpiration() int {
	if c.RefreshTokenExpiration == 0 {
		return 24 * 7
	}
	return c.RefreshTokenExpiration
}

func (c SimpleConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:Authorization"
	}
	return c.TokenLookup
}

func (c SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c SimpleConfig) GetIssuer() string     { return c.Issuer }
func (c SimpleConfig) GetAudience() []string { return c.Audience }

// TokenPair is the success payload of Register, Authenticate, and Refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccountName  string `json:"account_name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
