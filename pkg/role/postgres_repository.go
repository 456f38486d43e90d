package role

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopcore/shop-auth/pkg/database"
)

// PostgresRoleRepository implements RoleRepository using pgx
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRoleRepository creates a new PostgreSQL-based role repository
func NewPostgresRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{
		pool: pool,
	}
}

// UpsertRole inserts the role if absent and returns the canonical row.
// ON CONFLICT DO NOTHING keeps the existing row untouched, so the description
// of an already-existing role is never overwritten.
func (r *PostgresRoleRepository) UpsertRole(ctx context.Context, arg UpsertRoleParams) (Role, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Role{}, database.TranslateError(err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO roles (name, description) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		arg.Name, arg.Description)
	if err != nil {
		return Role{}, database.TranslateError(err)
	}

	var role Role
	err = tx.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE name = $1`,
		arg.Name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err != nil {
		return Role{}, database.TranslateError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Role{}, database.TranslateError(err)
	}
	return role, nil
}

// GetRoleByName fetches a role by its unique name
func (r *PostgresRoleRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE name = $1`,
		name).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err != nil {
		return Role{}, database.TranslateError(err)
	}
	return role, nil
}

// GetRoleByID fetches a role by id
func (r *PostgresRoleRepository) GetRoleByID(ctx context.Context, id uuid.UUID) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, created_at FROM roles WHERE id = $1`,
		id).Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
	if err != nil {
		return Role{}, database.TranslateError(err)
	}
	return role, nil
}

// FindRoles lists all roles ordered by name
func (r *PostgresRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
			return nil, database.TranslateError(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, database.TranslateError(err)
	}
	return roles, nil
}
