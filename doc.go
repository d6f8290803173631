// Package auth provides token based authentication with server side
// revocation: JWT issuance and verification, durable token records backed by
// Bun, and HTTP middleware for extracting and validating bearer tokens.
//
// Token lifecycle:
//   - Registering or authenticating an account issues an access/refresh pair.
//     The access token is recorded in the auth_tokens table; the refresh token
//     is stateless and verified by signature and expiry alone.
//   - Issuing a new access token revokes the account's previous live records
//     inside the same transaction, so at most one access token is live per
//     account at any time.
//   - Logout marks the presented token revoked and expired. The operation is
//     idempotent: unknown or already revoked tokens are a no-op.
//
// Request authentication:
//   - The authware middleware extracts a bearer token, verifies it, and either
//     attaches the resolved identity to the request context or silently drops
//     the failure and lets the request continue unauthenticated. Pair it with
//     RequireAuthenticated on routes that must reject anonymous requests.
package auth
