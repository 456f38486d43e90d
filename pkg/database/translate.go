package database

import (
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shopcore/shop-auth/pkg/errors"
)

// Postgres error codes the repositories classify on.
// Constraint violations are detected by code, never by message text.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
)

// TranslateError converts pgx/pgconn failures into the typed error codes the
// services branch on: no rows -> NOT_FOUND, unique violation -> CONFLICT,
// foreign key violation -> NOT_FOUND (the referenced row does not exist),
// everything else -> STORE_UNAVAILABLE.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, pgx.ErrNoRows) {
		return errors.Wrap(err, errors.ErrCodeNotFound, "record not found")
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Wrap(err, errors.ErrCodeConflict, "record violates a uniqueness constraint")
		case pgForeignKeyViolation:
			return errors.Wrap(err, errors.ErrCodeNotFound, "referenced record not found")
		case pgSerializationFail, pgDeadlockDetected:
			return errors.Wrap(err, errors.ErrCodeStoreUnavailable, "transaction aborted by the store")
		}
	}

	return errors.Wrap(err, errors.ErrCodeStoreUnavailable, "storage operation failed")
}
