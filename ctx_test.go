package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity(role Role) Identity {
	return NewIdentityFromAccount(&Account{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Role:      role,
	})
}

func TestAccountContextRoundTrip(t *testing.T) {
	identity := testIdentity(RoleHRManager)

	ctx := WithAccountContext(context.Background(), identity)

	got, ok := AccountFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", got.Email())
	assert.Equal(t, RoleHRManager, got.Role())

	_, ok = AccountFromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ada@example.com"},
		AccountRole:      RoleEmployee,
	}

	ctx := WithClaimsContext(context.Background(), claims)

	got, ok := GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", got.Subject())
	assert.Equal(t, RoleEmployee, got.Role())

	_, ok = GetClaims(context.Background())
	assert.False(t, ok)

	// wrong type under the key is treated as absent
	wrong := context.WithValue(context.Background(), claimsCtxKey, "not-claims")
	_, ok = GetClaims(wrong)
	assert.False(t, ok)
}

func TestGetRouterIdentity(t *testing.T) {
	identity := testIdentity(RoleUser)

	ctx := router.NewMockContext()
	ctx.LocalsMock["user"] = identity

	got, ok := GetRouterIdentity(ctx, "")
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", got.Email())

	ctx = router.NewMockContext()
	ctx.LocalsMock["session"] = identity

	got, ok = GetRouterIdentity(ctx, "session")
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", got.Email())

	ctx = router.NewMockContext()
	ctx.LocalsMock["user"] = "not-an-identity"

	_, ok = GetRouterIdentity(ctx, "user")
	assert.False(t, ok)
}

func TestHasAuthority(t *testing.T) {
	ctx := WithAccountContext(context.Background(), testIdentity(RoleHRManager))

	assert.True(t, HasAuthority(ctx, AuthorityHRRead))
	assert.False(t, HasAuthority(ctx, AuthorityAdminDelete))
	assert.False(t, HasAuthority(context.Background(), AuthorityHRRead))
}

func TestHasRoleAtLeast(t *testing.T) {
	ctx := WithAccountContext(context.Background(), testIdentity(RoleDepartmentManager))

	assert.True(t, HasRoleAtLeast(ctx, RoleUser))
	assert.True(t, HasRoleAtLeast(ctx, RoleDepartmentManager))
	assert.False(t, HasRoleAtLeast(ctx, RoleSystemAdmin))
	assert.False(t, HasRoleAtLeast(context.Background(), RoleUser))
}
