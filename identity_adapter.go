package auth

// AccountIdentity adapts an Account into the Identity interface for token
// generation.
type AccountIdentity struct {
	account *Account
}

// NewIdentityFromAccount returns an Identity adapter for the provided account.
func NewIdentityFromAccount(account *Account) Identity {
	if account == nil {
		return nil
	}
	return AccountIdentity{account: account}
}

// ID returns the account's ID as a string.
func (a AccountIdentity) ID() string {
	if a.account == nil {
		return ""
	}
	return a.account.ID.String()
}

// Email returns the account's email address.
func (a AccountIdentity) Email() string {
	if a.account == nil {
		return ""
	}
	return a.account.Email
}

// Role returns the account's role.
func (a AccountIdentity) Role() Role {
	if a.account == nil {
		return ""
	}
	return a.account.Role
}

// DisplayName returns the account's human readable name.
func (a AccountIdentity) DisplayName() string {
	if a.account == nil {
		return ""
	}
	return a.account.DisplayName()
}

// Authorities returns the permission strings granted by the account's role.
func (a AccountIdentity) Authorities() []string {
	if a.account == nil {
		return nil
	}
	return RoleAuthorities(a.account.Role)
}
