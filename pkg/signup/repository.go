package signup

import (
	"context"

	"github.com/google/uuid"
)

// AssignRoleParams holds the inputs for the post-signup role binding
type AssignRoleParams struct {
	Email           string
	RoleName        string
	RoleDescription string
}

// RoleBinding is the outcome of a successful role assignment
type RoleBinding struct {
	UserID   uuid.UUID
	RoleID   uuid.UUID
	RoleName string
}

// SignupRepository defines the storage operations of the signup-completion
// hook. AssignRoleByEmail upserts the role and binds it to the user row
// matched by email within one transaction: both commit or both roll back.
// A missing user surfaces as a NOT_FOUND-class error.
type SignupRepository interface {
	AssignRoleByEmail(ctx context.Context, arg AssignRoleParams) (RoleBinding, error)
}
