package login

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopcore/shop-auth/pkg/database"
)

// PostgresLoginRepository implements LoginRepository using pgx
type PostgresLoginRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresLoginRepository creates a new PostgreSQL-based login repository
func NewPostgresLoginRepository(pool *pgxpool.Pool) *PostgresLoginRepository {
	return &PostgresLoginRepository{
		pool: pool,
	}
}

// CreateIdentity creates the user row and its password credential in one
// transaction. By convention the credential account id equals the user id.
func (r *PostgresLoginRepository) CreateIdentity(ctx context.Context, arg CreateIdentityParams) (Identity, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Identity{}, database.TranslateError(err)
	}
	defer tx.Rollback(ctx)

	var identity Identity
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, name) VALUES ($1, $2)
		 RETURNING id, email, name, created_at`,
		arg.Email, arg.Name).Scan(&identity.ID, &identity.Email, &identity.Name, &identity.CreatedAt)
	if err != nil {
		return Identity{}, database.TranslateError(err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO credentials (account_id, user_id, provider_id, password_hash)
		 VALUES ($1, $2, $3, $4)`,
		identity.ID.String(), identity.ID, PasswordProviderID, arg.PasswordHash)
	if err != nil {
		return Identity{}, database.TranslateError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Identity{}, database.TranslateError(err)
	}
	return identity, nil
}

// FindIdentityByEmail fetches an identity by email
func (r *PostgresLoginRepository) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	var identity Identity
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, created_at FROM users WHERE email = $1`,
		email).Scan(&identity.ID, &identity.Email, &identity.Name, &identity.CreatedAt)
	if err != nil {
		return Identity{}, database.TranslateError(err)
	}
	return identity, nil
}

// GetPasswordCredential fetches a credential by the full compound key
func (r *PostgresLoginRepository) GetPasswordCredential(ctx context.Context, key CredentialKey) (Credential, error) {
	var cred Credential
	err := r.pool.QueryRow(ctx,
		`SELECT account_id, user_id, provider_id, password_hash, created_at, updated_at
		 FROM credentials
		 WHERE user_id = $1 AND account_id = $2 AND provider_id = $3`,
		key.UserID, key.AccountID, key.ProviderID).
		Scan(&cred.AccountID, &cred.UserID, &cred.ProviderID, &cred.PasswordHash, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		return Credential{}, database.TranslateError(err)
	}
	return cred, nil
}

// CreateSession persists an issued session token
func (r *PostgresLoginRepository) CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error) {
	var session Session
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (user_id, token, expires_at) VALUES ($1, $2, $3)
		 RETURNING id, user_id, token, expires_at, created_at`,
		arg.UserID, arg.Token, arg.ExpiresAt).
		Scan(&session.ID, &session.UserID, &session.Token, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		return Session{}, database.TranslateError(err)
	}
	return session, nil
}
