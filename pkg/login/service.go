package login

import (
	"context"
	"log/slog"
	"net/mail"
	"time"

	"github.com/shopcore/shop-auth/pkg/errors"
	"github.com/shopcore/shop-auth/pkg/tokengenerator"
)

const DefaultMinPasswordLength = 8

// SignUpParams holds the inputs for identity creation
type SignUpParams struct {
	Email    string
	Name     string
	Password string
}

// AuthResult is the outcome of a successful signup or login
type AuthResult struct {
	Identity  Identity
	Token     string
	ExpiresAt time.Time
}

// IdentityService is the identity provider: it owns credential creation,
// password verification and session issuance. Registered UserCreatedHooks run
// after the identity transaction commits, never before.
type IdentityService struct {
	repo              LoginRepository
	hasher            PasswordHasher
	jwtService        *tokengenerator.JwtService
	hooks             []UserCreatedHook
	minPasswordLength int
}

// IdentityServiceOption is a functional option for configuring IdentityService
type IdentityServiceOption func(*IdentityService)

// WithPasswordHasher sets the password hasher
func WithPasswordHasher(h PasswordHasher) IdentityServiceOption {
	return func(s *IdentityService) {
		s.hasher = h
	}
}

// WithUserCreatedHook registers a hook invoked after a user is durably created
func WithUserCreatedHook(h UserCreatedHook) IdentityServiceOption {
	return func(s *IdentityService) {
		s.hooks = append(s.hooks, h)
	}
}

// WithMinPasswordLength sets the minimum accepted password length
func WithMinPasswordLength(n int) IdentityServiceOption {
	return func(s *IdentityService) {
		s.minPasswordLength = n
	}
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(repo LoginRepository, jwtService *tokengenerator.JwtService, opts ...IdentityServiceOption) *IdentityService {
	s := &IdentityService{
		repo:              repo,
		hasher:            &BcryptHasher{},
		jwtService:        jwtService,
		minPasswordLength: DefaultMinPasswordLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterUserCreatedHook registers a hook after construction. Used to break
// the construction cycle between the identity provider and the signup
// orchestrator that listens to it.
func (s *IdentityService) RegisterUserCreatedHook(h UserCreatedHook) {
	s.hooks = append(s.hooks, h)
}

// SignUp validates the request, creates the user and credential atomically,
// issues a session token and then dispatches the user-created hooks.
// Validation and duplicate-email failures keep distinct codes for callers to
// classify; a hook failure after the identity committed surfaces with the
// wrapped hook error while the user row remains.
func (s *IdentityService) SignUp(ctx context.Context, params SignUpParams) (*AuthResult, error) {
	if err := s.validateSignUp(params); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to hash password")
	}

	identity, err := s.repo.CreateIdentity(ctx, CreateIdentityParams{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.issueSession(ctx, identity)
	if err != nil {
		return nil, err
	}

	// The identity is durable at this point; hooks see a committed user row.
	for _, hook := range s.hooks {
		if err := hook.OnUserCreated(ctx, identity.Email); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Login verifies the password credential for the given email and issues a
// session token. Unknown email and wrong password are indistinguishable to
// the caller.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	invalidCredentials := errors.New(errors.ErrCodeInvalidCredentials, "invalid email or password")

	identity, err := s.repo.FindIdentityByEmail(ctx, email)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, invalidCredentials
		}
		return nil, err
	}

	cred, err := s.repo.GetPasswordCredential(ctx, CredentialKey{
		UserID:     identity.ID,
		AccountID:  identity.ID.String(),
		ProviderID: PasswordProviderID,
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, invalidCredentials
		}
		return nil, err
	}

	match, err := s.hasher.Verify(password, cred.PasswordHash)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to verify password")
	}
	if !match {
		return nil, invalidCredentials
	}

	return s.issueSession(ctx, identity)
}

func (s *IdentityService) issueSession(ctx context.Context, identity Identity) (*AuthResult, error) {
	token, expiresAt, err := s.jwtService.GenerateAccessToken(identity.ID, identity.Email, identity.Name)
	if err != nil {
		return nil, errors.InternalWrap(err, "failed to generate session token")
	}

	_, err = s.repo.CreateSession(ctx, CreateSessionParams{
		UserID:    identity.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		slog.Error("Failed persisting session", "userId", identity.ID, "err", err)
		return nil, err
	}

	return &AuthResult{
		Identity:  identity,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *IdentityService) validateSignUp(params SignUpParams) error {
	if params.Email == "" || params.Password == "" {
		return errors.New(errors.ErrCodeValidationFailed, "email and password are required")
	}
	if _, err := mail.ParseAddress(params.Email); err != nil {
		return errors.New(errors.ErrCodeValidationFailed, "email address is not valid")
	}
	if len(params.Password) < s.minPasswordLength {
		return errors.Newf(errors.ErrCodeValidationFailed, "password must be at least %d characters", s.minPasswordLength)
	}
	return nil
}
