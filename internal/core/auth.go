package core

import "context"

// UserHandle identifies a principal authenticated by an identity provider.
// The facade passes it through untouched; only the provider interprets it.
type UserHandle struct {
	UID          string `json:"uid"`
	Email        string `json:"email,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"` // seconds; 0 when unknown
	Provider     string `json:"provider,omitempty"`
}

// AuthResult is the uniform outcome of every account operation.
// User is set only when an authentication succeeds.
type AuthResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    *UserHandle `json:"user,omitempty"`
}

// IdentityProvider is the external service that owns credentials and accounts.
// Failures are reported as *identity.ProviderError values.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*UserHandle, error)
	DeleteUser(ctx context.Context, user *UserHandle) error
	Name() string
}
