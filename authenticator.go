package auth

import (
	"context"
	"reflect"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Auther drives registration, login, refresh, and logout. Every access token
// it hands out has a live record in the store, and issuing a new one revokes
// the account's previous ones inside the same transaction.
type Auther struct {
	directory    IdentityDirectory
	repo         RepositoryManager
	codec        *TokenCodec
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(directory IdentityDirectory, repo RepositoryManager, opts Config) *Auther {
	codec := NewTokenCodec(
		[]byte(opts.GetSigningKey()),
		time.Duration(opts.GetTokenExpiration())*time.Hour,
		time.Duration(opts.GetRefreshTokenExpiration())*time.Hour,
		opts.GetIssuer(),
		opts.GetAudience(),
	)

	return &Auther{
		directory:    directory,
		repo:         repo,
		codec:        codec,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenCodec overrides the codec, e.g. to inject a fixed clock in tests.
func (s *Auther) WithTokenCodec(codec *TokenCodec) *Auther {
	if codec != nil {
		s.codec = codec
	}
	return s
}

// TokenCodec returns the codec used by this Auther
func (s *Auther) TokenCodec() *TokenCodec {
	return s.codec
}

type RegisterAccountMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
	UseHashid bool   `json:"-"`
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

func (e RegisterAccountMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.FirstName, validation.Required),
		validation.Field(&e.LastName, validation.Required),
		validation.Field(&e.Email, validation.Required, is.Email),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 0)),
		// an empty role falls back to RoleUser at creation; anything else
		// must be a role that can actually authenticate
		validation.Field(&e.Role, validation.In(
			RoleUser,
			RoleEmployee,
			RoleDepartmentManager,
			RoleHRManager,
			RoleSystemAdmin,
		)),
	)
}

// Register creates an account and logs it in, returning its first token pair.
// A duplicate email fails with ErrDuplicateIdentity and leaves no partial
// state behind.
func (s *Auther) Register(ctx context.Context, msg RegisterAccountMessage) (*TokenPair, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload").
			WithCode(goerrors.CodeBadRequest)
	}

	if existing, err := s.repo.Accounts().GetByEmail(ctx, msg.Email); err == nil && existing != nil {
		return nil, ErrDuplicateIdentity
	} else if err != nil && !repository.IsRecordNotFound(err) && !goerrors.IsNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
	}

	hash, err := HashPassword(msg.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	account := &Account{
		FirstName:    msg.FirstName,
		LastName:     msg.LastName,
		Email:        msg.Email,
		PasswordHash: hash,
		Role:         msg.Role,
	}

	if msg.UseHashid {
		if id, err := hashid.NewUUID(msg.Email); err == nil {
			account.ID = id
		}
	}

	var pair *TokenPair
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		created, err := s.repo.Accounts().RegisterTx(ctx, tx, account)
		if err != nil {
			// a concurrent registration can slip past the existence
			// check; the index failure is still the duplicate error
			if isUniqueViolation(err) {
				return ErrDuplicateIdentity
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		pair, err = s.issueTokensTx(ctx, tx, NewIdentityFromAccount(created))
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	s.emitAuthEvent(ctx, ActivityEventRegistration, ActorRef{ID: account.ID.String(), Type: "account"}, account.ID.String(), map[string]any{
		"email": account.Email,
	})

	return pair, nil
}

// Authenticate verifies the credentials and issues a fresh token pair. All
// previously live tokens for the account are revoked in the same transaction
// that records the new one, so at most one access token is live per account.
func (s *Auther) Authenticate(ctx context.Context, identifier, password string) (*TokenPair, error) {
	identity, err := s.directory.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Authenticate verify identity error: %v", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Authenticate identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"error":      ErrInvalidCredentials.Error(),
		})
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, identity)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromIdentity(identity), identity.ID(), map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromIdentity(identity), identity.ID(), map[string]any{
		"identifier": identifier,
	})

	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The new access
// token supersedes any live one, so a refresh also acts as a remote logout
// for older sessions.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Parse(refreshToken)
	if err != nil {
		return nil, err
	}

	identity, err := s.directory.FindIdentityByEmail(ctx, claims.Subject())
	if err != nil {
		s.logger.Error("Refresh find identity error: %v", err)
		return nil, err
	}

	pair, err := s.issueTokens(ctx, identity)
	if err != nil {
		return nil, err
	}

	// Refresh tokens are stateless and not rotated; the presented token
	// stays valid until its natural expiry.
	pair.RefreshToken = refreshToken

	s.emitAuthEvent(ctx, ActivityEventTokenRefreshed, s.actorFromIdentity(identity), identity.ID(), nil)

	return pair, nil
}

// FindAccountByEmail resolves an identity without a credential check. Meant
// for collaborating modules that already hold an authenticated context.
func (s *Auther) FindAccountByEmail(ctx context.Context, email string) (Identity, error) {
	return s.directory.FindIdentityByEmail(ctx, email)
}

// Logout invalidates the presented access token server side. Unknown tokens
// are a no-op so repeated logouts succeed.
func (s *Auther) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.repo.Tokens().Revoke(ctx, token); err != nil {
		return goerrors.Wrap(err, ErrPersistenceFailure.Category, ErrPersistenceFailure.Message).
			WithTextCode(TextCodePersistenceFailure)
	}

	s.emitAuthEvent(ctx, ActivityEventLogout, ActorRef{Type: "account"}, "", nil)

	return nil
}

// Verify authenticates a raw access token end to end: signature and expiry
// via the codec, server side liveness via the store, and subject resolution
// via the directory.
func (s *Auther) Verify(ctx context.Context, raw string) (Identity, AuthClaims, error) {
	claims, err := s.codec.Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	live, err := s.repo.Tokens().IsLive(ctx, raw)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check token liveness")
	}
	if !live {
		return nil, nil, ErrTokenRevoked
	}

	identity, err := s.directory.FindIdentityByEmail(ctx, claims.Subject())
	if err != nil {
		return nil, nil, err
	}

	return identity, claims, nil
}

func (s *Auther) issueTokens(ctx context.Context, identity Identity) (*TokenPair, error) {
	var pair *TokenPair
	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		pair, err = s.issueTokensTx(ctx, tx, identity)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, ErrPersistenceFailure.Category, ErrPersistenceFailure.Message).
			WithTextCode(TextCodePersistenceFailure)
	}

	return pair, nil
}

// issueTokensTx signs a new pair and swaps the account's live record for the
// new access token. The revoke and the insert share tx, so two concurrent
// issuances cannot both leave a live record behind.
func (s *Auther) issueTokensTx(ctx context.Context, tx bun.Tx, identity Identity) (*TokenPair, error) {
	accountID, err := uuid.Parse(identity.ID())
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "identity has a malformed account id")
	}

	access, err := s.codec.IssueAccessToken(identity.Email(), identity.Role())
	if err != nil {
		return nil, err
	}

	refresh, err := s.codec.IssueRefreshToken(identity.Email(), identity.Role())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Tokens().RevokeAllLiveTx(ctx, tx, accountID); err != nil {
		return nil, goerrors.Wrap(err, ErrPersistenceFailure.Category, ErrPersistenceFailure.Message).
			WithTextCode(TextCodePersistenceFailure)
	}

	if _, err := s.repo.Tokens().CreateTx(ctx, tx, NewAccessTokenRecord(accountID, access)); err != nil {
		return nil, goerrors.Wrap(err, ErrPersistenceFailure.Category, ErrPersistenceFailure.Message).
			WithTextCode(TextCodePersistenceFailure)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccountName:  accountName(identity),
		Email:        identity.Email(),
		Role:         identity.Role(),
	}, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, accountID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		AccountID: accountID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func (s *Auther) actorFromIdentity(identity Identity) ActorRef {
	if identity == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   identity.ID(),
		Type: "account",
	}
}

type displayNameIdentity interface {
	DisplayName() string
}

func accountName(identity Identity) string {
	if identity == nil {
		return ""
	}

	if dn, ok := identity.(displayNameIdentity); ok {
		return dn.DisplayName()
	}

	return identity.Email()
}
