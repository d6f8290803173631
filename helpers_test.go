package auth_test

import (
	"context"
	"database/sql"
	"testing"

	auth "github.com/nexorahq/go-auth"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"
)

const (
	sqliteCreateAccounts = `CREATE TABLE accounts (
    id TEXT NOT NULL PRIMARY KEY,
    role TEXT NOT NULL DEFAULT 'user',
    first_name TEXT,
    last_name TEXT,
    email TEXT NOT NULL UNIQUE,
    profile_picture TEXT,
    password_hash TEXT,
    login_attempts INTEGER NOT NULL DEFAULT 0,
    login_attempt_at TIMESTAMP,
    loggedin_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP
);`

	sqliteCreateAuthTokens = `CREATE TABLE auth_tokens (
    id TEXT NOT NULL PRIMARY KEY,
    token TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL DEFAULT 'bearer',
    revoked BOOLEAN NOT NULL DEFAULT 0,
    expired BOOLEAN NOT NULL DEFAULT 0,
    account_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (account_id) REFERENCES accounts (id)
);`

	sqliteCreateLiveTokenIndex = `CREATE UNIQUE INDEX uq_auth_tokens_live_account
    ON auth_tokens (account_id)
    WHERE revoked = 0 AND expired = 0;`
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	for _, stmt := range []string{sqliteCreateAccounts, sqliteCreateAuthTokens, sqliteCreateLiveTokenIndex} {
		_, err = bunDB.Exec(stmt)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_ = bunDB.Close()
	})

	return bunDB
}

func setupRepoManager(t *testing.T) auth.RepositoryManager {
	t.Helper()

	repo := auth.NewRepositoryManager(setupTestDB(t))
	require.NoError(t, repo.Validate())

	return repo
}

// cheapHash keeps password comparisons fast; the cost is embedded in the
// hash, so compares follow it regardless of the package's hashing cost.
func cheapHash(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(hash)
}

func seedAccount(t *testing.T, repo auth.RepositoryManager, email string, role auth.Role, password string) *auth.Account {
	t.Helper()

	account, err := repo.Accounts().Register(context.Background(), &auth.Account{
		FirstName:    "Test",
		LastName:     "Account",
		Email:        email,
		Role:         role,
		PasswordHash: cheapHash(t, password),
	})
	require.NoError(t, err)
	require.NotNil(t, account)

	return account
}
