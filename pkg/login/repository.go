package login

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PasswordProviderID is the provider identifier for password-based credentials
const PasswordProviderID = "credential"

// Identity represents an authenticated user identity
type Identity struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
}

// Credential is a provider-scoped secret bound to a user.
// Primary uniqueness in the store is on AccountID only; the
// (UserID, ProviderID) compound is not constrained unique.
type Credential struct {
	AccountID    string
	UserID       uuid.UUID
	ProviderID   string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CredentialKey is the full compound key for credential lookups.
// Lookups must never filter by user id alone.
type CredentialKey struct {
	UserID     uuid.UUID
	AccountID  string
	ProviderID string
}

// Session represents an issued session token record
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CreateIdentityParams holds the inputs for identity creation
type CreateIdentityParams struct {
	Email        string
	Name         string
	PasswordHash string
}

// CreateSessionParams holds the inputs for session persistence
type CreateSessionParams struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// LoginRepository defines the interface for identity storage operations.
// CreateIdentity persists the user row and its password credential as one
// atomic unit; a duplicate email surfaces as a CONFLICT-class error.
type LoginRepository interface {
	CreateIdentity(ctx context.Context, arg CreateIdentityParams) (Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (Identity, error)
	GetPasswordCredential(ctx context.Context, key CredentialKey) (Credential, error)
	CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error)
}

// UserCreatedHook is the port through which the identity provider notifies
// interested subsystems after it has durably committed a new user. The hook is
// invoked at-most-once per successful signup and never for failed signups.
type UserCreatedHook interface {
	OnUserCreated(ctx context.Context, email string) error
}
