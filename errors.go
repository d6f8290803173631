package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes give API consumers a stable, machine readable identifier for
// every failure kind this package can produce.
const (
	TextCodeInvalidCreds       = "auth_invalid_credentials"
	TextCodeDuplicateIdentity  = "auth_duplicate_identity"
	TextCodeAccountNotFound    = "auth_account_not_found"
	TextCodeTokenMalformed     = "auth_token_malformed"
	TextCodeSignatureInvalid   = "auth_token_signature_invalid"
	TextCodeTokenExpired       = "auth_token_expired"
	TextCodeTokenRevoked       = "auth_token_revoked"
	TextCodePersistenceFailure = "auth_persistence_failure"
	TextCodeTooManyAttempts    = "auth_too_many_login_attempts"
	TextCodeClaimsMappingError = "auth_claims_mapping_error"
)

// ErrInvalidCredentials is returned for a failed password check. The same
// error covers an unknown identifier so responses cannot be used to probe
// which emails have accounts.
var ErrInvalidCredentials = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrDuplicateIdentity is returned when registering an email that already
// has an account.
var ErrDuplicateIdentity = errors.New("an account with this email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity).
	WithCode(errors.CodeConflict)

// ErrAccountNotFound is returned when a subject resolved from a valid token
// has no backing account.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeNotFound)

// ErrTokenMalformed is returned when a token string fails structural or
// signature verification.
var ErrTokenMalformed = errors.New("token is malformed or its signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenSignatureInvalid is returned when a structurally sound token fails
// signature verification. Kept separate from ErrTokenMalformed so telemetry
// can tell tampering apart from garbage input, and both apart from expiry.
var ErrTokenSignatureInvalid = errors.New("token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeSignatureInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token is cryptographically sound but
// past its expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenRevoked is returned when a token parses but its stored record has
// been invalidated server side.
var ErrTokenRevoked = errors.New("token has been revoked", errors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(errors.CodeUnauthorized)

// ErrPersistenceFailure wraps store errors during issuance or revocation.
// Operations that hit it return no tokens: a token the store did not record
// would be impossible to revoke later.
var ErrPersistenceFailure = errors.New("token persistence failed", errors.CategoryInternal).
	WithTextCode(TextCodePersistenceFailure)

// ErrTooManyLoginAttempts is returned when an account is inside its
// failed-login cool down window.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrUnableToMapClaims is returned when a parsed token carries claims we
// cannot decode into our structure.
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithTextCode(TextCodeClaimsMappingError).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError matches structured and legacy expiry errors.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError matches structured and legacy malformed-token errors.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// isUniqueViolation matches the driver-level unique constraint failures bun
// surfaces (sqlite and postgres wordings).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// IsDuplicateIdentityError reports whether err, at any level of wrapping,
// is the duplicate-email registration failure.
func IsDuplicateIdentityError(err error) bool {
	return errors.Is(err, ErrDuplicateIdentity)
}

// IsInvalidCredentialsError reports whether err is the uniform credential
// failure.
func IsInvalidCredentialsError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}
