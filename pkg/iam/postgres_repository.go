package iam

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopcore/shop-auth/pkg/database"
	"github.com/shopcore/shop-auth/pkg/errors"
	"github.com/shopcore/shop-auth/pkg/login"
	"github.com/shopcore/shop-auth/pkg/role"
)

const userWithRoleQuery = `
	SELECT u.id, u.email, u.name, u.created_at, u.updated_at,
	       r.id, r.name, r.description, r.created_at
	FROM users u
	LEFT JOIN roles r ON r.id = u.role_id`

// PostgresUserRepository implements UserRepository using pgx
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL-based user repository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		pool: pool,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserWithRole(row rowScanner) (UserWithRole, error) {
	var user UserWithRole
	var roleID *uuid.UUID
	var roleName, roleDescription *string
	var roleCreatedAt *time.Time

	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt,
		&roleID, &roleName, &roleDescription, &roleCreatedAt)
	if err != nil {
		return UserWithRole{}, err
	}

	if roleID != nil {
		user.Role = &role.Role{
			ID:          *roleID,
			Name:        *roleName,
			Description: *roleDescription,
			CreatedAt:   *roleCreatedAt,
		}
	}
	return user, nil
}

// CreateUserWithCredential creates the user row bound to its role and the
// password credential row in one transaction.
func (r *PostgresUserRepository) CreateUserWithCredential(ctx context.Context, arg CreateUserParams) (UserWithRole, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO users (email, name, role_id) VALUES ($1, $2, $3)
		 RETURNING id`,
		arg.Email, arg.Name, arg.RoleID).Scan(&userID)
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO credentials (account_id, user_id, provider_id, password_hash)
		 VALUES ($1, $2, $3, $4)`,
		userID.String(), userID, arg.ProviderID, arg.PasswordHash)
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}

	user, err := scanUserWithRole(tx.QueryRow(ctx, userWithRoleQuery+` WHERE u.id = $1`, userID))
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}
	return user, nil
}

// GetUserWithRole gets a user joined with its role
func (r *PostgresUserRepository) GetUserWithRole(ctx context.Context, id uuid.UUID) (UserWithRole, error) {
	user, err := scanUserWithRole(r.pool.QueryRow(ctx, userWithRoleQuery+` WHERE u.id = $1`, id))
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}
	return user, nil
}

// FindUsersWithRoles lists all users joined with their roles, newest first
func (r *PostgresUserRepository) FindUsersWithRoles(ctx context.Context) ([]UserWithRole, error) {
	rows, err := r.pool.Query(ctx, userWithRoleQuery+` ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()

	var users []UserWithRole
	for rows.Next() {
		user, err := scanUserWithRole(rows)
		if err != nil {
			return nil, database.TranslateError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, database.TranslateError(err)
	}
	return users, nil
}

// UpdateUser updates user scalar fields and, when a password hash is
// provided, the credential row matched by the full compound key. Both writes
// share one transaction.
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, arg UpdateUserParams) (UserWithRole, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx,
		`UPDATE users
		 SET email = COALESCE($2, email),
		     name = COALESCE($3, name),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING id`,
		arg.ID, arg.Email, arg.Name).Scan(&userID)
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}

	if arg.PasswordHash != nil {
		// The credential relation's primary uniqueness is on account_id, not
		// on (user_id, provider_id), so the update must filter by the full
		// compound key.
		tag, err := tx.Exec(ctx,
			`UPDATE credentials
			 SET password_hash = $4, updated_at = now()
			 WHERE user_id = $1 AND account_id = $2 AND provider_id = $3`,
			arg.ID, arg.ID.String(), arg.ProviderID, *arg.PasswordHash)
		if err != nil {
			return UserWithRole{}, database.TranslateError(err)
		}
		if tag.RowsAffected() == 0 {
			return UserWithRole{}, errors.Wrap(pgx.ErrNoRows, errors.ErrCodeNotFound, "credential not found")
		}
	}

	user, err := scanUserWithRole(tx.QueryRow(ctx, userWithRoleQuery+` WHERE u.id = $1`, arg.ID))
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}
	return user, nil
}

// UpdateUserRole updates the user's role reference. Referential integrity of
// the role id is enforced by the store's foreign key, not by a pre-check.
func (r *PostgresUserRepository) UpdateUserRole(ctx context.Context, id, roleID uuid.UUID) (UserWithRole, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx,
		`UPDATE users SET role_id = $2, updated_at = now() WHERE id = $1
		 RETURNING id`,
		id, roleID).Scan(&userID)
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}

	user, err := scanUserWithRole(tx.QueryRow(ctx, userWithRoleQuery+` WHERE u.id = $1`, id))
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}
	return user, nil
}

// DeleteUser deletes the user row and returns the pre-deletion snapshot.
// Credential and session rows go with it through the store's cascade.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uuid.UUID) (UserWithRole, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}
	defer tx.Rollback(ctx)

	user, err := scanUserWithRole(tx.QueryRow(ctx, userWithRoleQuery+` WHERE u.id = $1`, id))
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return UserWithRole{}, database.TranslateError(err)
	}
	return user, nil
}

// FindUsersWithoutRole enumerates users left in the degraded state
func (r *PostgresUserRepository) FindUsersWithoutRole(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, name, role_id, created_at, updated_at
		 FROM users WHERE role_id IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.RoleID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, database.TranslateError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, database.TranslateError(err)
	}
	return users, nil
}

// GetCredential fetches a credential by its full compound key
func (r *PostgresUserRepository) GetCredential(ctx context.Context, key login.CredentialKey) (login.Credential, error) {
	var cred login.Credential
	err := r.pool.QueryRow(ctx,
		`SELECT account_id, user_id, provider_id, password_hash, created_at, updated_at
		 FROM credentials
		 WHERE user_id = $1 AND account_id = $2 AND provider_id = $3`,
		key.UserID, key.AccountID, key.ProviderID).
		Scan(&cred.AccountID, &cred.UserID, &cred.ProviderID, &cred.PasswordHash, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		return login.Credential{}, database.TranslateError(err)
	}
	return cred, nil
}
