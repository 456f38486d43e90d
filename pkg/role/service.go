package role

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopcore/shop-auth/pkg/errors"
)

// RoleService provides methods for role management
type RoleService struct {
	repo RoleRepository
}

func NewRoleService(repo RoleRepository) *RoleService {
	return &RoleService{
		repo: repo,
	}
}

// ResolveRole returns the role with the given name, creating it when absent.
// The call is idempotent: an existing role is returned unchanged and the
// provided description is ignored on that path.
func (s *RoleService) ResolveRole(ctx context.Context, name, description string) (Role, error) {
	if name == "" {
		return Role{}, errors.InvalidInput("role name", "cannot be empty")
	}
	role, err := s.repo.UpsertRole(ctx, UpsertRoleParams{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return Role{}, errors.Wrapf(err, errors.ErrCodeInternal, "failed to resolve role %s", name)
	}
	return role, nil
}

// GetRoleByName retrieves a role by name
func (s *RoleService) GetRoleByName(ctx context.Context, name string) (Role, error) {
	role, err := s.repo.GetRoleByName(ctx, name)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return Role{}, errors.New(errors.ErrCodeRoleNotFound, "Role not found")
		}
		return Role{}, err
	}
	return role, nil
}

// GetRole retrieves a role by id
func (s *RoleService) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	role, err := s.repo.GetRoleByID(ctx, id)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return Role{}, errors.New(errors.ErrCodeRoleNotFound, "Role not found")
		}
		return Role{}, err
	}
	return role, nil
}

// FindRoles lists all roles
func (s *RoleService) FindRoles(ctx context.Context) ([]Role, error) {
	return s.repo.FindRoles(ctx)
}
