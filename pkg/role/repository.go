package role

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Canonical role names. The catalog is open ended; these are the names the
// shop backend creates itself.
const (
	AdminRoleName          = "ADMIN"
	ProductManagerRoleName = "PRODUCT_MANAGER"
	DefaultRoleName        = "USER"
)

// Description returns the human description used when one of the canonical
// roles is created lazily on first reference.
func Description(name string) string {
	switch name {
	case AdminRoleName:
		return "Administrator with full access to the shop backend"
	case ProductManagerRoleName:
		return "Manages the product catalog"
	case DefaultRoleName:
		return "Default shopper role"
	default:
		return ""
	}
}

// Role represents a named permission tier referenced by user rows
type Role struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}

// UpsertRoleParams holds the inputs for the get-or-create operation
type UpsertRoleParams struct {
	Name        string
	Description string
}

// RoleRepository defines the interface for role storage operations.
// UpsertRole must be atomic: two racing calls with the same name yield exactly
// one row, relying on the store's uniqueness constraint rather than a
// check-then-create sequence.
type RoleRepository interface {
	UpsertRole(ctx context.Context, arg UpsertRoleParams) (Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	GetRoleByID(ctx context.Context, id uuid.UUID) (Role, error)
	FindRoles(ctx context.Context) ([]Role, error)
}
