package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the identity record tokens are issued against. The email is the
// token subject and must be unique. Accounts are created by registration and
// never deleted by this package.
type Account struct {
	bun.BaseModel  `bun:"table:accounts,alias:acc"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           Role       `bun:"role,notnull" json:"role,omitempty"`
	FirstName      string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName       string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	ProfilePicture string     `bun:"profile_picture" json:"profile_picture,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// DisplayName returns the human readable name used in token pair responses.
func (a *Account) DisplayName() string {
	if a == nil {
		return ""
	}
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// TokenKind labels the persisted token row. Only access tokens are stored;
// refresh tokens are validated purely by signature and expiry, so a record
// kind other than bearer never appears in normal operation.
type TokenKind = string

const (
	// TokenKindBearer is the persisted access token kind.
	TokenKindBearer TokenKind = "bearer"
)

// TokenRecord is the server side liveness row for an issued access token.
// A token is live while both flags are false. Rows are soft revoked, never
// deleted, so the issuance history doubles as an audit trail.
type TokenRecord struct {
	bun.BaseModel `bun:"table:auth_tokens,alias:tok"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"token,omitempty"`
	Kind          TokenKind  `bun:"kind,notnull" json:"kind,omitempty"`
	Revoked       bool       `bun:"revoked" json:"revoked"`
	Expired       bool       `bun:"expired" json:"expired"`
	AccountID     uuid.UUID  `bun:"account_id,notnull,type:uuid" json:"account_id,omitempty"`
	Account       *Account   `bun:"rel:belongs-to,join:account_id=id" json:"account,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// IsLive reports whether the record still grants access.
func (t *TokenRecord) IsLive() bool {
	return t != nil && !t.Revoked && !t.Expired
}

// Invalidate flips both flags. Used by logout and by revoke-all sweeps.
func (t *TokenRecord) Invalidate() *TokenRecord {
	t.Revoked = true
	t.Expired = true
	return t
}

// NewAccessTokenRecord builds the row persisted alongside a freshly issued
// access token, with both liveness flags clear.
func NewAccessTokenRecord(accountID uuid.UUID, token string) *TokenRecord {
	return &TokenRecord{
		ID:        uuid.New(),
		Token:     token,
		Kind:      TokenKindBearer,
		Revoked:   false,
		Expired:   false,
		AccountID: accountID,
	}
}
