package signup

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopcore/shop-auth/pkg/database"
)

// PostgresSignupRepository implements SignupRepository using pgx
type PostgresSignupRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSignupRepository creates a new PostgreSQL-based signup repository
func NewPostgresSignupRepository(pool *pgxpool.Pool) *PostgresSignupRepository {
	return &PostgresSignupRepository{
		pool: pool,
	}
}

// AssignRoleByEmail upserts the role and binds it to the user matched by
// email inside one transaction. Role uniqueness is enforced by the store's
// constraint, not by a check-then-create sequence.
func (r *PostgresSignupRepository) AssignRoleByEmail(ctx context.Context, arg AssignRoleParams) (RoleBinding, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return RoleBinding{}, database.TranslateError(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO roles (name, description) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		arg.RoleName, arg.RoleDescription)
	if err != nil {
		return RoleBinding{}, database.TranslateError(err)
	}

	var binding RoleBinding
	err = tx.QueryRow(ctx,
		`SELECT id, name FROM roles WHERE name = $1`,
		arg.RoleName).Scan(&binding.RoleID, &binding.RoleName)
	if err != nil {
		return RoleBinding{}, database.TranslateError(err)
	}

	err = tx.QueryRow(ctx,
		`UPDATE users SET role_id = $1, updated_at = now() WHERE email = $2
		 RETURNING id`,
		binding.RoleID, arg.Email).Scan(&binding.UserID)
	if err != nil {
		// pgx.ErrNoRows here means the user row does not exist
		return RoleBinding{}, database.TranslateError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return RoleBinding{}, database.TranslateError(err)
	}
	return binding, nil
}
