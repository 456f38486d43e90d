package iam

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/shop-auth/pkg/login"
	"github.com/shopcore/shop-auth/pkg/role"
)

// User is a user directory record
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	RoleID    *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserWithRole is a user joined with its role. Role is nil for users in the
// degraded (roleless) state.
type UserWithRole struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Role      *role.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserParams holds the inputs for the atomic user+credential create
type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
	RoleID       uuid.UUID
	ProviderID   string
}

// UpdateUserParams holds the inputs for the atomic user update. Nil fields are
// left unchanged. A non-nil PasswordHash updates the credential row matched by
// the full (user id, account id, provider id) compound key.
type UpdateUserParams struct {
	ID           uuid.UUID
	Email        *string
	Name         *string
	PasswordHash *string
	ProviderID   string
}

// UserRepository defines the interface for user directory storage operations.
// Multi-row operations (user+credential create, user+credential update,
// delete with snapshot) are each one transaction: a mid-sequence fault leaves
// no partial row behind.
type UserRepository interface {
	CreateUserWithCredential(ctx context.Context, arg CreateUserParams) (UserWithRole, error)
	GetUserWithRole(ctx context.Context, id uuid.UUID) (UserWithRole, error)
	FindUsersWithRoles(ctx context.Context) ([]UserWithRole, error)
	UpdateUser(ctx context.Context, arg UpdateUserParams) (UserWithRole, error)
	UpdateUserRole(ctx context.Context, id, roleID uuid.UUID) (UserWithRole, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (UserWithRole, error)

	// FindUsersWithoutRole enumerates users in the degraded state for
	// operational reconciliation.
	FindUsersWithoutRole(ctx context.Context) ([]User, error)

	// GetCredential fetches a credential by its full compound key.
	GetCredential(ctx context.Context, key login.CredentialKey) (login.Credential, error)
}
