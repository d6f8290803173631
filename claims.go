package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the read surface of a verified token's payload.
type AuthClaims interface {
	Subject() string
	Role() string
	IssuedAt() time.Time
	Expires() time.Time
}

// Claims is the signed token payload. The subject is the account email; the
// codec relies on RegisteredClaims for issuance and expiry timestamps.
type Claims struct {
	jwt.RegisteredClaims
	AccountRole Role `json:"role,omitempty"`
}

var _ AuthClaims = (*Claims)(nil)

// Subject returns the subject claim, the owning account's email.
func (c *Claims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Role returns the role embedded at issuance. It reflects the account at
// sign time, not its current state.
func (c *Claims) Role() Role {
	return c.AccountRole
}

// IssuedAt returns the issuance time.
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Expires returns the expiration time.
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}
