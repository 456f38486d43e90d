package signup_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/shop-auth/pkg/errors"
	"github.com/shopcore/shop-auth/pkg/inmem"
	"github.com/shopcore/shop-auth/pkg/login"
	"github.com/shopcore/shop-auth/pkg/metrics"
	"github.com/shopcore/shop-auth/pkg/role"
	"github.com/shopcore/shop-auth/pkg/signup"
	"github.com/shopcore/shop-auth/pkg/tokengenerator"
)

const adminEmail = "admin@shop.example"

type countingRecorder struct {
	metrics.Noop
	success  int
	rejected int
	degraded int
	logins   map[bool]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{logins: make(map[bool]int)}
}

func (r *countingRecorder) RecordSignupSuccess()            { r.success++ }
func (r *countingRecorder) RecordSignupRejected()           { r.rejected++ }
func (r *countingRecorder) RecordSignupDegraded()           { r.degraded++ }
func (r *countingRecorder) RecordLoginAttempt(success bool) { r.logins[success]++ }

func newSignupService(store *inmem.Store, repo signup.SignupRepository, recorder metrics.Recorder) *signup.SignupService {
	identityService := login.NewIdentityService(store, tokengenerator.NewJwtService("test-secret"))
	return signup.NewSignupService(identityService, repo,
		signup.WithAdminEmail(adminEmail),
		signup.WithRecorder(recorder),
	)
}

func TestSignupBindsAdminRoleForConfiguredEmail(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	recorder := newCountingRecorder()
	svc := newSignupService(store, store, recorder)

	result, err := svc.Signup(ctx, signup.SignupParams{
		Email:    adminEmail,
		Name:     "Admin",
		Password: "correct horse",
	})
	require.NoError(t, err)

	user, err := store.GetUserWithRole(ctx, result.Identity.ID)
	require.NoError(t, err)
	require.NotNil(t, user.Role)
	assert.Equal(t, role.AdminRoleName, user.Role.Name)
	assert.Equal(t, 1, recorder.success)
}

func TestSignupBindsDefaultRoleForOtherEmails(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	svc := newSignupService(store, store, metrics.Noop{})

	result, err := svc.Signup(ctx, signup.SignupParams{
		Email:    "bob@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	user, err := store.GetUserWithRole(ctx, result.Identity.ID)
	require.NoError(t, err)
	require.NotNil(t, user.Role)
	assert.Equal(t, role.DefaultRoleName, user.Role.Name)
}

func TestSignupFailuresAreGeneric(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	recorder := newCountingRecorder()
	svc := newSignupService(store, store, recorder)

	_, err := svc.Signup(ctx, signup.SignupParams{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	// Duplicate email, weak password and malformed email all collapse to the
	// same outward error
	duplicate := signup.SignupParams{Email: "alice@example.com", Password: "correct horse"}
	weak := signup.SignupParams{Email: "carol@example.com", Password: "short"}
	malformed := signup.SignupParams{Email: "not-an-email", Password: "correct horse"}

	for _, params := range []signup.SignupParams{duplicate, weak, malformed} {
		_, err := svc.Signup(ctx, params)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeSignupFailed))
		assert.Equal(t, "unable to create account", errors.GetMessage(err))
	}
	assert.Equal(t, 3, recorder.rejected)

	// The rejected signups left no partial rows behind
	users, err := store.FindUsersWithRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

type failingSignupRepo struct{}

func (failingSignupRepo) AssignRoleByEmail(ctx context.Context, arg signup.AssignRoleParams) (signup.RoleBinding, error) {
	return signup.RoleBinding{}, errors.New(errors.ErrCodeStoreUnavailable, "store unavailable")
}

func TestSignupDegradedWhenRoleBindingFails(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	recorder := newCountingRecorder()
	svc := newSignupService(store, failingSignupRepo{}, recorder)

	_, err := svc.Signup(ctx, signup.SignupParams{Email: "dave@example.com", Password: "correct horse"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSignupDegraded))
	assert.Equal(t, "failed to complete signup", errors.GetMessage(err))
	assert.Equal(t, 1, recorder.degraded)
	assert.Equal(t, 0, recorder.rejected)

	// The identity survived the failed binding and is discoverable for
	// reconciliation
	orphans, err := store.FindUsersWithoutRole(ctx)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "dave@example.com", orphans[0].Email)
}

func TestOnUserCreatedSilentWhenUserAbsent(t *testing.T) {
	store := inmem.NewStore()
	svc := newSignupService(store, store, metrics.Noop{})

	err := svc.OnUserCreated(context.Background(), "ghost@example.com")
	assert.NoError(t, err)
}

func TestLoginRecordsOutcomeAndPassesThroughInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	recorder := newCountingRecorder()
	svc := newSignupService(store, store, recorder)

	_, err := svc.Signup(ctx, signup.SignupParams{Email: "erin@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "erin@example.com", "wrong password")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidCredentials))
	assert.Equal(t, "invalid email or password", errors.GetMessage(err))

	result, err := svc.Login(ctx, "erin@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	assert.Equal(t, 1, recorder.logins[false])
	assert.Equal(t, 1, recorder.logins[true])
}
