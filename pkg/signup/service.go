package signup

import (
	"context"
	"log/slog"

	"github.com/shopcore/shop-auth/pkg/errors"
	"github.com/shopcore/shop-auth/pkg/login"
	"github.com/shopcore/shop-auth/pkg/metrics"
	"github.com/shopcore/shop-auth/pkg/role"
)

// SignupParams holds a signup request
type SignupParams struct {
	Email    string
	Name     string
	Password string
}

// SignupService orchestrates signup: it delegates credential creation and
// session issuance to the identity provider and completes role assignment in
// the user-created hook. It implements login.UserCreatedHook and must be
// registered with the identity service it wraps.
type SignupService struct {
	identityService *login.IdentityService
	repo            SignupRepository
	adminEmail      string
	production      bool
	recorder        metrics.Recorder
}

// SignupServiceOption is a functional option for configuring SignupService
type SignupServiceOption func(*SignupService)

// WithAdminEmail sets the administrator email the role policy matches against
func WithAdminEmail(email string) SignupServiceOption {
	return func(s *SignupService) {
		s.adminEmail = email
	}
}

// WithProduction gates verbose failure logging off in production-like environments
func WithProduction(production bool) SignupServiceOption {
	return func(s *SignupService) {
		s.production = production
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r metrics.Recorder) SignupServiceOption {
	return func(s *SignupService) {
		s.recorder = r
	}
}

// NewSignupService creates a SignupService and registers it as a user-created
// hook on the identity service.
func NewSignupService(identityService *login.IdentityService, repo SignupRepository, opts ...SignupServiceOption) *SignupService {
	s := &SignupService{
		identityService: identityService,
		repo:            repo,
		recorder:        metrics.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	identityService.RegisterUserCreatedHook(s)
	return s
}

// Signup creates the identity (which triggers role binding through the hook)
// and returns the identity provider's result unchanged. Every failure is
// normalized to a single generic error: the caller must not be able to tell a
// duplicate email from a weak password or a storage fault.
func (s *SignupService) Signup(ctx context.Context, params SignupParams) (*login.AuthResult, error) {
	result, err := s.identityService.SignUp(ctx, login.SignUpParams{
		Email:    params.Email,
		Name:     params.Name,
		Password: params.Password,
	})
	if err != nil {
		s.logFailure("Signup failed", err)
		if errors.IsCode(err, errors.ErrCodeSignupDegraded) {
			// Identity committed, role binding did not. The degraded counter
			// was already incremented by the hook.
			return nil, errors.New(errors.ErrCodeSignupDegraded, "failed to complete signup")
		}
		s.recorder.RecordSignupRejected()
		return nil, errors.New(errors.ErrCodeSignupFailed, "unable to create account")
	}

	s.recorder.RecordSignupSuccess()
	return result, nil
}

// Login delegates to the identity provider and records the attempt outcome.
func (s *SignupService) Login(ctx context.Context, email, password string) (*login.AuthResult, error) {
	result, err := s.identityService.Login(ctx, email, password)
	if err != nil {
		s.recorder.RecordLoginAttempt(false)
		s.logFailure("Login failed", err)
		if errors.IsCode(err, errors.ErrCodeInvalidCredentials) {
			return nil, err
		}
		return nil, errors.Internal("unable to log in")
	}
	s.recorder.RecordLoginAttempt(true)
	return result, nil
}

// OnUserCreated implements login.UserCreatedHook. Invoked at-most-once after
// the identity provider durably commits a new user; never for failed signups.
func (s *SignupService) OnUserCreated(ctx context.Context, email string) error {
	roleName := Classify(email, s.adminEmail)

	binding, err := s.repo.AssignRoleByEmail(ctx, AssignRoleParams{
		Email:           email,
		RoleName:        roleName,
		RoleDescription: role.Description(roleName),
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			// The signup did not actually succeed upstream; the identity
			// provider already reported the failure to the client.
			slog.Debug("User absent after signup, skipping role binding", "email", email)
			return nil
		}
		// The identity side already committed: the user now exists without a
		// role and needs reconciliation.
		slog.Error("Role binding failed after identity creation", "role", roleName, "err", err)
		s.recorder.RecordSignupDegraded()
		return errors.Wrap(err, errors.ErrCodeSignupDegraded, "failed to complete signup")
	}

	slog.Info("Role bound to new user", "userId", binding.UserID, "role", binding.RoleName)
	return nil
}

func (s *SignupService) logFailure(msg string, err error) {
	if s.production {
		slog.Error(msg, "code", errors.GetCode(err))
		return
	}
	slog.Error(msg, "code", errors.GetCode(err), "err", err)
}
