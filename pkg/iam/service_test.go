package iam_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/shop-auth/pkg/errors"
	"github.com/shopcore/shop-auth/pkg/iam"
	"github.com/shopcore/shop-auth/pkg/inmem"
	"github.com/shopcore/shop-auth/pkg/login"
	"github.com/shopcore/shop-auth/pkg/role"
)

func newUserService(store *inmem.Store) *iam.UserService {
	return iam.NewUserService(store, role.NewRoleService(store))
}

func TestCreateUserDefaultsToUserRole(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	svc := newUserService(store)

	user, err := svc.CreateUser(ctx, "alice@example.com", "Alice", "correct horse", nil)
	require.NoError(t, err)
	require.NotNil(t, user.Role)
	assert.Equal(t, role.DefaultRoleName, user.Role.Name)

	// The credential row exists under the full compound key
	cred, err := store.GetCredential(ctx, login.CredentialKey{
		UserID:     user.ID,
		AccountID:  user.ID.String(),
		ProviderID: login.PasswordProviderID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cred.PasswordHash)
	assert.NotEqual(t, "correct horse", cred.PasswordHash)
}

func TestCreateUserWithExplicitRole(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	roleService := role.NewRoleService(store)
	svc := iam.NewUserService(store, roleService)

	pm, err := roleService.ResolveRole(ctx, role.ProductManagerRoleName, role.Description(role.ProductManagerRoleName))
	require.NoError(t, err)

	user, err := svc.CreateUser(ctx, "pm@example.com", "Pat", "correct horse", &pm.ID)
	require.NoError(t, err)
	require.NotNil(t, user.Role)
	assert.Equal(t, role.ProductManagerRoleName, user.Role.Name)
}

func TestCreateUserValidation(t *testing.T) {
	svc := newUserService(inmem.NewStore())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"missing email", "", "correct horse"},
		{"malformed email", "not-an-email", "correct horse"},
		{"short password", "a@example.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tt.email, "", tt.password, nil)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeValidationFailed))
		})
	}
}

func TestCreateUserDuplicateEmailIsGeneric(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(inmem.NewStore())

	_, err := svc.CreateUser(ctx, "alice@example.com", "Alice", "correct horse", nil)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "alice@example.com", "Other", "correct horse", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
	assert.Equal(t, "unable to create user", errors.GetMessage(err))
}

func TestGetUserNotFound(t *testing.T) {
	svc := newUserService(inmem.NewStore())

	_, err := svc.GetUser(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUserNotFound))
	assert.Equal(t, "User not found", errors.GetMessage(err))
}

func TestFindUsersNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(inmem.NewStore())

	for _, email := range []string{"first@example.com", "second@example.com", "third@example.com"} {
		_, err := svc.CreateUser(ctx, email, "", "correct horse", nil)
		require.NoError(t, err)
	}

	users, err := svc.FindUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "third@example.com", users[0].Email)
	assert.Equal(t, "second@example.com", users[1].Email)
	assert.Equal(t, "first@example.com", users[2].Email)
}

func TestUpdateUserFields(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(inmem.NewStore())

	created, err := svc.CreateUser(ctx, "alice@example.com", "Alice", "correct horse", nil)
	require.NoError(t, err)

	newName := "Alice B"
	updated, err := svc.UpdateUser(ctx, created.ID, iam.UpdateUserRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	// Omitted fields are untouched
	assert.Equal(t, "alice@example.com", updated.Email)
	require.NotNil(t, updated.Role)
	assert.Equal(t, role.DefaultRoleName, updated.Role.Name)
}

func TestUpdateUserPasswordTouchesOnlyPasswordCredential(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	svc := newUserService(store)

	created, err := svc.CreateUser(ctx, "alice@example.com", "Alice", "correct horse", nil)
	require.NoError(t, err)

	before, err := store.GetCredential(ctx, login.CredentialKey{
		UserID:     created.ID,
		AccountID:  created.ID.String(),
		ProviderID: login.PasswordProviderID,
	})
	require.NoError(t, err)

	// The same user also holds a credential from another provider. Its
	// account id differs, so a compound-key update must leave it alone.
	other := login.Credential{
		AccountID:    "oauth|" + created.ID.String(),
		UserID:       created.ID,
		ProviderID:   "oauth",
		PasswordHash: "external-subject",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	store.AddCredential(other)

	newPassword := "an even longer horse"
	_, err = svc.UpdateUser(ctx, created.ID, iam.UpdateUserRequest{Password: &newPassword})
	require.NoError(t, err)

	after, err := store.GetCredential(ctx, login.CredentialKey{
		UserID:     created.ID,
		AccountID:  created.ID.String(),
		ProviderID: login.PasswordProviderID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)

	untouched, err := store.GetCredential(ctx, login.CredentialKey{
		UserID:     created.ID,
		AccountID:  other.AccountID,
		ProviderID: other.ProviderID,
	})
	require.NoError(t, err)
	assert.Equal(t, "external-subject", untouched.PasswordHash)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc := newUserService(inmem.NewStore())

	email := "ghost@example.com"
	_, err := svc.UpdateUser(context.Background(), uuid.New(), iam.UpdateUserRequest{Email: &email})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUserNotFound))
	assert.Equal(t, "User not found", errors.GetMessage(err))
}

func TestUpdateUserRole(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	roleService := role.NewRoleService(store)
	svc := iam.NewUserService(store, roleService)

	created, err := svc.CreateUser(ctx, "alice@example.com", "Alice", "correct horse", nil)
	require.NoError(t, err)

	admin, err := roleService.ResolveRole(ctx, role.AdminRoleName, role.Description(role.AdminRoleName))
	require.NoError(t, err)

	updated, err := svc.UpdateUserRole(ctx, created.ID, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Role)
	assert.Equal(t, role.AdminRoleName, updated.Role.Name)
}

func TestUpdateUserRoleRejectsDanglingRole(t *testing.T) {
	ctx := context.Background()
	svc := newUserService(inmem.NewStore())

	created, err := svc.CreateUser(ctx, "alice@example.com", "Alice", "correct horse", nil)
	require.NoError(t, err)

	_, err = svc.UpdateUserRole(ctx, created.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))
	assert.Equal(t, "User or role not found", errors.GetMessage(err))
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	svc := newUserService(store)

	created, err := svc.CreateUser(ctx, "alice@example.com", "Alice", "correct horse", nil)
	require.NoError(t, err)

	_, err = store.CreateSession(ctx, login.CreateSessionParams{
		UserID:    created.ID,
		Token:     "token",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	snapshot, err := svc.DeleteUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", snapshot.Email)

	_, err = svc.GetUser(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUserNotFound))

	assert.Empty(t, store.Credentials(created.ID))
	assert.Empty(t, store.Sessions(created.ID))
}

func TestDeleteUserNotFound(t *testing.T) {
	svc := newUserService(inmem.NewStore())

	_, err := svc.DeleteUser(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUserNotFound))
}
