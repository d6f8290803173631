package auth_test

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	auth "github.com/nexorahq/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTracker lets us hand the provider a pre-shaped account without a
// database round trip.
type stubTracker struct {
	account        *auth.Account
	attemptedCalls int
	succeededCalls int
}

func (s *stubTracker) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.Account, error) {
	if s.account == nil {
		return nil, auth.ErrAccountNotFound
	}
	return s.account, nil
}

func (s *stubTracker) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	return s.GetByIdentifier(ctx, email)
}

func (s *stubTracker) TrackAttemptedLogin(ctx context.Context, account *auth.Account) error {
	s.attemptedCalls++
	return nil
}

func (s *stubTracker) TrackSuccessfulLogin(ctx context.Context, account *auth.Account) error {
	s.succeededCalls++
	return nil
}

func TestVerifyIdentity(t *testing.T) {
	repo := setupRepoManager(t)
	ctx := context.Background()

	seedAccount(t, repo, "ada@example.com", auth.RoleSystemAdmin, "correct horse")

	provider := auth.NewAccountProvider(repo.Accounts())

	identity, err := provider.VerifyIdentity(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", identity.Email())
	assert.Equal(t, auth.RoleSystemAdmin, identity.Role())
	assert.NotEmpty(t, identity.ID())

	account, err := repo.Accounts().GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotNil(t, account.LoggedInAt)
	assert.Equal(t, 0, account.LoginAttempts)
}

func TestVerifyIdentityUnknownIdentifier(t *testing.T) {
	repo := setupRepoManager(t)

	provider := auth.NewAccountProvider(repo.Accounts())

	_, err := provider.VerifyIdentity(context.Background(), "ghost@example.com", "whatever")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestVerifyIdentityWrongPassword(t *testing.T) {
	repo := setupRepoManager(t)
	ctx := context.Background()

	seedAccount(t, repo, "ada@example.com", auth.RoleUser, "correct horse")

	provider := auth.NewAccountProvider(repo.Accounts())

	_, err := provider.VerifyIdentity(ctx, "ada@example.com", "wrong horse")
	require.Error(t, err)
	// same error as an unknown identifier, so callers cannot probe for
	// registered emails
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	account, err := repo.Accounts().GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, account.LoginAttempts)
	assert.NotNil(t, account.LoginAttemptAt)
}

func TestVerifyIdentityTooManyAttempts(t *testing.T) {
	now := time.Now()
	tracker := &stubTracker{account: &auth.Account{
		Email:          "ada@example.com",
		Role:           auth.RoleUser,
		PasswordHash:   cheapHash(t, "correct horse"),
		LoginAttempts:  auth.MaxLoginAttempts + 1,
		LoginAttemptAt: &now,
	}}

	provider := auth.NewAccountProvider(tracker)

	_, err := provider.VerifyIdentity(context.Background(), "ada@example.com", "correct horse")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTooManyLoginAttempts)
	assert.Equal(t, 0, tracker.succeededCalls)
}

func TestVerifyIdentityCooldownExpiryResetsAttempts(t *testing.T) {
	stale := time.Now().Add(-48 * time.Hour)
	tracker := &stubTracker{account: &auth.Account{
		Email:          "ada@example.com",
		Role:           auth.RoleUser,
		PasswordHash:   cheapHash(t, "correct horse"),
		LoginAttempts:  auth.MaxLoginAttempts + 3,
		LoginAttemptAt: &stale,
	}}

	provider := auth.NewAccountProvider(tracker)

	identity, err := provider.VerifyIdentity(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", identity.Email())
	assert.Equal(t, 1, tracker.succeededCalls)
}

func TestVerifyIdentityLockedAfterRepeatedFailures(t *testing.T) {
	repo := setupRepoManager(t)
	ctx := context.Background()

	seedAccount(t, repo, "ada@example.com", auth.RoleUser, "correct horse")

	provider := auth.NewAccountProvider(repo.Accounts())

	for i := 0; i <= auth.MaxLoginAttempts; i++ {
		_, err := provider.VerifyIdentity(ctx, "ada@example.com", "wrong horse")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	}

	// even the right password is rejected once the counter crosses the limit
	_, err := provider.VerifyIdentity(ctx, "ada@example.com", "correct horse")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrTooManyLoginAttempts)
}

func TestVerifyIdentityInvalidRole(t *testing.T) {
	tracker := &stubTracker{account: &auth.Account{
		Email:        "ada@example.com",
		Role:         auth.Role("squatter"),
		PasswordHash: cheapHash(t, "correct horse"),
	}}

	provider := auth.NewAccountProvider(tracker)

	_, err := provider.VerifyIdentity(context.Background(), "ada@example.com", "correct horse")
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, "INVALID_ROLE", rich.TextCode)
}

func TestFindIdentityByEmail(t *testing.T) {
	repo := setupRepoManager(t)
	ctx := context.Background()

	seedAccount(t, repo, "ada@example.com", auth.RoleEmployee, "correct horse")

	provider := auth.NewAccountProvider(repo.Accounts())

	identity, err := provider.FindIdentityByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", identity.Email())
	assert.Equal(t, auth.RoleEmployee, identity.Role())

	_, err = provider.FindIdentityByEmail(ctx, "ghost@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
}
