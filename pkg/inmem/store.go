// Package inmem provides a single in-memory store implementing every
// repository interface of the service. All implementations share one set of
// maps, so cross-package flows (signup creating an identity, the hook binding
// its role, directory reads seeing both) behave like they do against the real
// store. Intended for tests and local development.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopcore/shop-auth/pkg/errors"
	"github.com/shopcore/shop-auth/pkg/iam"
	"github.com/shopcore/shop-auth/pkg/login"
	"github.com/shopcore/shop-auth/pkg/role"
	"github.com/shopcore/shop-auth/pkg/signup"
)

type userRecord struct {
	id        uuid.UUID
	email     string
	name      string
	roleID    *uuid.UUID
	createdAt time.Time
	updatedAt time.Time
	seq       int
}

// Store is an in-memory implementation of role.RoleRepository,
// login.LoginRepository, signup.SignupRepository and iam.UserRepository over
// one shared state.
type Store struct {
	mu          sync.Mutex
	roles       map[uuid.UUID]role.Role
	rolesByName map[string]uuid.UUID
	users       map[uuid.UUID]*userRecord
	credentials map[string]login.Credential
	sessions    map[uuid.UUID]login.Session
	nextSeq     int
}

var (
	_ role.RoleRepository     = (*Store)(nil)
	_ login.LoginRepository   = (*Store)(nil)
	_ signup.SignupRepository = (*Store)(nil)
	_ iam.UserRepository      = (*Store)(nil)
)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		roles:       make(map[uuid.UUID]role.Role),
		rolesByName: make(map[string]uuid.UUID),
		users:       make(map[uuid.UUID]*userRecord),
		credentials: make(map[string]login.Credential),
		sessions:    make(map[uuid.UUID]login.Session),
	}
}

func notFound() error {
	return errors.New(errors.ErrCodeNotFound, "record not found")
}

// UpsertRole returns the existing role of the same name or creates it. The
// stored description wins over the incoming one, matching the store-side
// insert-if-absent semantics.
func (s *Store) UpsertRole(ctx context.Context, arg role.UpsertRoleParams) (role.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.rolesByName[arg.Name]; exists {
		return s.roles[id], nil
	}

	r := role.Role{
		ID:          uuid.New(),
		Name:        arg.Name,
		Description: arg.Description,
		CreatedAt:   time.Now(),
	}
	s.roles[r.ID] = r
	s.rolesByName[r.Name] = r.ID
	return r, nil
}

// GetRoleByName gets a role by name
func (s *Store) GetRoleByName(ctx context.Context, name string) (role.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.rolesByName[name]
	if !exists {
		return role.Role{}, notFound()
	}
	return s.roles[id], nil
}

// GetRoleByID gets a role by id
func (s *Store) GetRoleByID(ctx context.Context, id uuid.UUID) (role.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.roles[id]
	if !exists {
		return role.Role{}, notFound()
	}
	return r, nil
}

// FindRoles lists all roles
func (s *Store) FindRoles(ctx context.Context) ([]role.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles := make([]role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool {
		return roles[i].Name < roles[j].Name
	})
	return roles, nil
}

// CreateIdentity creates a user row and its password credential as one unit.
// A duplicate email surfaces as a CONFLICT-class error with nothing persisted.
func (s *Store) CreateIdentity(ctx context.Context, arg login.CreateIdentityParams) (login.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmail(arg.Email) != nil {
		return login.Identity{}, errors.New(errors.ErrCodeConflict, "duplicate key value violates unique constraint")
	}

	now := time.Now()
	rec := &userRecord{
		id:        uuid.New(),
		email:     arg.Email,
		name:      arg.Name,
		createdAt: now,
		updatedAt: now,
		seq:       s.nextSeq,
	}
	s.nextSeq++
	s.users[rec.id] = rec

	s.credentials[rec.id.String()] = login.Credential{
		AccountID:    rec.id.String(),
		UserID:       rec.id,
		ProviderID:   login.PasswordProviderID,
		PasswordHash: arg.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return login.Identity{
		ID:        rec.id,
		Email:     rec.email,
		Name:      rec.name,
		CreatedAt: rec.createdAt,
	}, nil
}

// FindIdentityByEmail gets an identity by email
func (s *Store) FindIdentityByEmail(ctx context.Context, email string) (login.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.findUserByEmail(email)
	if rec == nil {
		return login.Identity{}, notFound()
	}
	return login.Identity{
		ID:        rec.id,
		Email:     rec.email,
		Name:      rec.name,
		CreatedAt: rec.createdAt,
	}, nil
}

// GetPasswordCredential fetches a credential by its full compound key
func (s *Store) GetPasswordCredential(ctx context.Context, key login.CredentialKey) (login.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credentialByKey(key)
}

// CreateSession persists a session token record
func (s *Store) CreateSession(ctx context.Context, arg login.CreateSessionParams) (login.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := login.Session{
		ID:        uuid.New(),
		UserID:    arg.UserID,
		Token:     arg.Token,
		ExpiresAt: arg.ExpiresAt,
		CreatedAt: time.Now(),
	}
	s.sessions[session.ID] = session
	return session, nil
}

// AssignRoleByEmail upserts the role and binds it to the user matched by
// email. Both happen under one lock, mirroring the store-side transaction.
func (s *Store) AssignRoleByEmail(ctx context.Context, arg signup.AssignRoleParams) (signup.RoleBinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roleID, exists := s.rolesByName[arg.RoleName]
	if !exists {
		r := role.Role{
			ID:          uuid.New(),
			Name:        arg.RoleName,
			Description: arg.RoleDescription,
			CreatedAt:   time.Now(),
		}
		s.roles[r.ID] = r
		s.rolesByName[r.Name] = r.ID
		roleID = r.ID
	}

	rec := s.findUserByEmail(arg.Email)
	if rec == nil {
		return signup.RoleBinding{}, notFound()
	}

	bound := roleID
	rec.roleID = &bound
	rec.updatedAt = time.Now()

	return signup.RoleBinding{
		UserID:   rec.id,
		RoleID:   roleID,
		RoleName: s.roles[roleID].Name,
	}, nil
}

// CreateUserWithCredential creates the user row bound to its role and the
// password credential row as one unit. A missing role surfaces as the same
// NOT_FOUND class the store's foreign key produces.
func (s *Store) CreateUserWithCredential(ctx context.Context, arg iam.CreateUserParams) (iam.UserWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmail(arg.Email) != nil {
		return iam.UserWithRole{}, errors.New(errors.ErrCodeConflict, "duplicate key value violates unique constraint")
	}
	if _, exists := s.roles[arg.RoleID]; !exists {
		return iam.UserWithRole{}, notFound()
	}

	now := time.Now()
	roleID := arg.RoleID
	rec := &userRecord{
		id:        uuid.New(),
		email:     arg.Email,
		name:      arg.Name,
		roleID:    &roleID,
		createdAt: now,
		updatedAt: now,
		seq:       s.nextSeq,
	}
	s.nextSeq++
	s.users[rec.id] = rec

	s.credentials[rec.id.String()] = login.Credential{
		AccountID:    rec.id.String(),
		UserID:       rec.id,
		ProviderID:   arg.ProviderID,
		PasswordHash: arg.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return s.userWithRole(rec), nil
}

// GetUserWithRole gets a user joined with its role
func (s *Store) GetUserWithRole(ctx context.Context, id uuid.UUID) (iam.UserWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.users[id]
	if !exists {
		return iam.UserWithRole{}, notFound()
	}
	return s.userWithRole(rec), nil
}

// FindUsersWithRoles lists all users joined with their roles, newest first
func (s *Store) FindUsersWithRoles(ctx context.Context) ([]iam.UserWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]*userRecord, 0, len(s.users))
	for _, rec := range s.users {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].seq > recs[j].seq
	})

	users := make([]iam.UserWithRole, 0, len(recs))
	for _, rec := range recs {
		users = append(users, s.userWithRole(rec))
	}
	return users, nil
}

// UpdateUser updates user scalar fields and, when a password hash is
// provided, the credential matched by the full compound key.
func (s *Store) UpdateUser(ctx context.Context, arg iam.UpdateUserParams) (iam.UserWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.users[arg.ID]
	if !exists {
		return iam.UserWithRole{}, notFound()
	}

	if arg.Email != nil {
		if other := s.findUserByEmail(*arg.Email); other != nil && other.id != rec.id {
			return iam.UserWithRole{}, errors.New(errors.ErrCodeConflict, "duplicate key value violates unique constraint")
		}
	}

	if arg.PasswordHash != nil {
		key := login.CredentialKey{
			UserID:     arg.ID,
			AccountID:  arg.ID.String(),
			ProviderID: arg.ProviderID,
		}
		cred, err := s.credentialByKey(key)
		if err != nil {
			return iam.UserWithRole{}, errors.New(errors.ErrCodeNotFound, "credential not found")
		}
		cred.PasswordHash = *arg.PasswordHash
		cred.UpdatedAt = time.Now()
		s.credentials[cred.AccountID] = cred
	}

	if arg.Email != nil {
		rec.email = *arg.Email
	}
	if arg.Name != nil {
		rec.name = *arg.Name
	}
	rec.updatedAt = time.Now()

	return s.userWithRole(rec), nil
}

// UpdateUserRole updates the user's role reference. A missing role surfaces
// as the same NOT_FOUND class the store's foreign key produces.
func (s *Store) UpdateUserRole(ctx context.Context, id, roleID uuid.UUID) (iam.UserWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.users[id]
	if !exists {
		return iam.UserWithRole{}, notFound()
	}
	if _, exists := s.roles[roleID]; !exists {
		return iam.UserWithRole{}, notFound()
	}

	bound := roleID
	rec.roleID = &bound
	rec.updatedAt = time.Now()
	return s.userWithRole(rec), nil
}

// DeleteUser deletes the user and cascades to its credentials and sessions,
// returning the pre-deletion snapshot.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) (iam.UserWithRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.users[id]
	if !exists {
		return iam.UserWithRole{}, notFound()
	}
	snapshot := s.userWithRole(rec)

	delete(s.users, id)
	for accountID, cred := range s.credentials {
		if cred.UserID == id {
			delete(s.credentials, accountID)
		}
	}
	for sessionID, session := range s.sessions {
		if session.UserID == id {
			delete(s.sessions, sessionID)
		}
	}
	return snapshot, nil
}

// FindUsersWithoutRole enumerates users whose role binding never completed
func (s *Store) FindUsersWithoutRole(ctx context.Context) ([]iam.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]*userRecord, 0)
	for _, rec := range s.users {
		if rec.roleID == nil {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].seq > recs[j].seq
	})

	users := make([]iam.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, iam.User{
			ID:        rec.id,
			Email:     rec.email,
			Name:      rec.name,
			RoleID:    rec.roleID,
			CreatedAt: rec.createdAt,
			UpdatedAt: rec.updatedAt,
		})
	}
	return users, nil
}

// GetCredential fetches a credential by its full compound key
func (s *Store) GetCredential(ctx context.Context, key login.CredentialKey) (login.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credentialByKey(key)
}

// Sessions returns the sessions stored for a user
func (s *Store) Sessions(userID uuid.UUID) []login.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sessions []login.Session
	for _, session := range s.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	return sessions
}

// Credentials returns the credentials stored for a user
func (s *Store) Credentials(userID uuid.UUID) []login.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()

	var creds []login.Credential
	for _, cred := range s.credentials {
		if cred.UserID == userID {
			creds = append(creds, cred)
		}
	}
	return creds
}

// AddCredential stores an extra credential row. Used to model users holding
// credentials from more than one provider.
func (s *Store) AddCredential(cred login.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[cred.AccountID] = cred
}

func (s *Store) findUserByEmail(email string) *userRecord {
	for _, rec := range s.users {
		if rec.email == email {
			return rec
		}
	}
	return nil
}

func (s *Store) credentialByKey(key login.CredentialKey) (login.Credential, error) {
	cred, exists := s.credentials[key.AccountID]
	if !exists || cred.UserID != key.UserID || cred.ProviderID != key.ProviderID {
		return login.Credential{}, notFound()
	}
	return cred, nil
}

func (s *Store) userWithRole(rec *userRecord) iam.UserWithRole {
	user := iam.UserWithRole{
		ID:        rec.id,
		Email:     rec.email,
		Name:      rec.name,
		CreatedAt: rec.createdAt,
		UpdatedAt: rec.updatedAt,
	}
	if rec.roleID != nil {
		if r, exists := s.roles[*rec.roleID]; exists {
			bound := r
			user.Role = &bound
		}
	}
	return user
}
