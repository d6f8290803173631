package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenCodec signs and verifies compact bearer tokens. It is stateless: the
// store, not the codec, decides whether a verified token still grants
// access. Access and refresh strings come from the same signer with
// different TTLs; the string itself does not say which kind it is, the call
// site does.
type TokenCodec struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
}

// TokenCodecOption mutates codec construction defaults.
type TokenCodecOption func(*TokenCodec)

// WithClock overrides the codec's time source, primarily for tests.
func WithClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCodecLogger overrides the codec logger.
func WithCodecLogger(logger Logger) TokenCodecOption {
	return func(c *TokenCodec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewTokenCodec creates a codec for the given signing key and TTL profiles.
func NewTokenCodec(signingKey []byte, accessTTL, refreshTTL time.Duration, issuer string, audience jwt.ClaimStrings, opts ...TokenCodecOption) *TokenCodec {
	codec := &TokenCodec{
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		audience:   audience,
		logger:     defLogger{},
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(codec)
		}
	}

	return codec
}

// AccessTTL returns the configured access token lifetime.
func (c *TokenCodec) AccessTTL() time.Duration {
	return c.accessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (c *TokenCodec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// Issue signs a token for the subject with an explicit TTL. Side effect
// free; persisting the result is the caller's concern.
func (c *TokenCodec) Issue(subject string, role Role, ttl time.Duration) (string, error) {
	if ttl < 0 {
		return "", errors.New("token TTL must be non-negative", errors.CategoryBadInput)
	}

	now := c.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			Audience:  c.claimAudience(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		AccountRole: role,
	}

	return c.SignClaims(claims)
}

// IssueAccessToken signs a short lived access token for the subject.
func (c *TokenCodec) IssueAccessToken(subject string, role Role) (string, error) {
	return c.Issue(subject, role, c.accessTTL)
}

// IssueRefreshToken signs a long lived refresh token for the subject.
func (c *TokenCodec) IssueRefreshToken(subject string, role Role) (string, error) {
	return c.Issue(subject, role, c.refreshTTL)
}

// SignClaims signs arbitrary claims using the configured signing key.
func (c *TokenCodec) SignClaims(claims *Claims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Parse verifies signature integrity and expiry and returns the claims.
// Failures are typed so callers can tell tampering (ErrTokenMalformed,
// ErrTokenSignatureInvalid) from clock passage (ErrTokenExpired).
func (c *TokenCodec) Parse(tokenString string) (*Claims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 3)
	parserOptions = append(parserOptions, jwt.WithTimeFunc(c.now))
	if c.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(c.issuer))
	}
	if len(c.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(c.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			c.logger.Error("TokenCodec parse encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.signingKey, nil
	}, parserOptions...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
				WithTextCode(ErrTokenMalformed.TextCode)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		c.logger.Error("TokenCodec parse could not decode claims")
		return nil, ErrUnableToMapClaims
	}

	return claims, nil
}

func (c *TokenCodec) claimAudience() jwt.ClaimStrings {
	if len(c.audience) == 0 {
		return nil
	}
	aud := make(jwt.ClaimStrings, len(c.audience))
	copy(aud, c.audience)
	return aud
}
