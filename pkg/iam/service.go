package iam

import (
	"context"
	"net/mail"

	"github.com/google/uuid"
	"log/slog"

	"github.com/shopcore/shop-auth/pkg/errors"
	"github.com/shopcore/shop-auth/pkg/login"
	"github.com/shopcore/shop-auth/pkg/role"
)

// UpdateUserRequest holds the optional fields of a user update
type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UserService provides CRUD over user directory records. Each create/update
// also maintains the 1:1 password credential kept in sync with the user row.
type UserService struct {
	repo        UserRepository
	roleService *role.RoleService
	hasher      login.PasswordHasher
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, roleService *role.RoleService) *UserService {
	return &UserService{
		repo:        repo,
		roleService: roleService,
		hasher:      &login.BcryptHasher{},
	}
}

// FindUsers lists all users with their roles, newest first
func (s *UserService) FindUsers(ctx context.Context) ([]UserWithRole, error) {
	return s.repo.FindUsersWithRoles(ctx)
}

// GetUser gets a user by id
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (UserWithRole, error) {
	user, err := s.repo.GetUserWithRole(ctx, id)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return UserWithRole{}, errors.New(errors.ErrCodeUserNotFound, "User not found")
		}
		return UserWithRole{}, err
	}
	return user, nil
}

// CreateUser creates a user and its password credential atomically. When
// roleID is nil the default USER role is resolved through the role registry.
// A duplicate email is reported with a deliberately generic message.
func (s *UserService) CreateUser(ctx context.Context, email, name, password string, roleID *uuid.UUID) (UserWithRole, error) {
	if email == "" {
		return UserWithRole{}, errors.New(errors.ErrCodeValidationFailed, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return UserWithRole{}, errors.New(errors.ErrCodeValidationFailed, "email address is not valid")
	}
	if len(password) < login.DefaultMinPasswordLength {
		return UserWithRole{}, errors.Newf(errors.ErrCodeValidationFailed, "password must be at least %d characters", login.DefaultMinPasswordLength)
	}

	boundRoleID := uuid.Nil
	if roleID != nil {
		boundRoleID = *roleID
	} else {
		defaultRole, err := s.roleService.ResolveRole(ctx, role.DefaultRoleName, role.Description(role.DefaultRoleName))
		if err != nil {
			return UserWithRole{}, err
		}
		boundRoleID = defaultRole.ID
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return UserWithRole{}, errors.InternalWrap(err, "failed to hash password")
	}

	user, err := s.repo.CreateUserWithCredential(ctx, CreateUserParams{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		RoleID:       boundRoleID,
		ProviderID:   login.PasswordProviderID,
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeConflict) {
			slog.Info("User create rejected by uniqueness constraint")
			return UserWithRole{}, errors.New(errors.ErrCodeConflict, "unable to create user")
		}
		return UserWithRole{}, err
	}
	return user, nil
}

// UpdateUser updates user scalar fields and, when a password is provided, the
// matching credential row. The credential update always filters by the full
// (user id, account id, provider id) compound key.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (UserWithRole, error) {
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return UserWithRole{}, errors.New(errors.ErrCodeValidationFailed, "email address is not valid")
		}
	}

	params := UpdateUserParams{
		ID:         id,
		Email:      req.Email,
		Name:       req.Name,
		ProviderID: login.PasswordProviderID,
	}

	if req.Password != nil {
		if len(*req.Password) < login.DefaultMinPasswordLength {
			return UserWithRole{}, errors.Newf(errors.ErrCodeValidationFailed, "password must be at least %d characters", login.DefaultMinPasswordLength)
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return UserWithRole{}, errors.InternalWrap(err, "failed to hash password")
		}
		params.PasswordHash = &hash
	}

	user, err := s.repo.UpdateUser(ctx, params)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return UserWithRole{}, errors.New(errors.ErrCodeUserNotFound, "User not found")
		}
		if errors.IsCode(err, errors.ErrCodeConflict) {
			return UserWithRole{}, errors.New(errors.ErrCodeConflict, "unable to update user")
		}
		return UserWithRole{}, err
	}
	return user, nil
}

// UpdateUserRole updates the user's role reference. The role id is not
// pre-validated; a dangling reference is rejected by the store's referential
// integrity and surfaces as the same NotFound class.
func (s *UserService) UpdateUserRole(ctx context.Context, id, roleID uuid.UUID) (UserWithRole, error) {
	user, err := s.repo.UpdateUserRole(ctx, id, roleID)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return UserWithRole{}, errors.New(errors.ErrCodeNotFound, "User or role not found")
		}
		return UserWithRole{}, err
	}
	return user, nil
}

// DeleteUser deletes a user and returns the pre-deletion snapshot for audit
// purposes. Owned credential and session rows are cascade-deleted by the
// store.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) (UserWithRole, error) {
	user, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return UserWithRole{}, errors.New(errors.ErrCodeUserNotFound, "User not found")
		}
		return UserWithRole{}, err
	}
	return user, nil
}

// FindUsersWithoutRole enumerates users in the degraded state for
// reconciliation tooling.
func (s *UserService) FindUsersWithoutRole(ctx context.Context) ([]User, error) {
	return s.repo.FindUsersWithoutRole(ctx)
}
