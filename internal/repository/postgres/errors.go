package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories translate into domain errors
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError reports a unique constraint violation (e.g. a code name taken in the project)
func IsPgDuplicateError(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

// IsPgForeignKeyError reports a reference to a missing parent row
func IsPgForeignKeyError(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

// IsPgCheckError reports a CHECK constraint violation, such as an empty assignment span
func IsPgCheckError(err error) bool {
	return pgErrorCode(err) == pgCheckViolation
}

// IsPgNoRowsError reports a query that matched nothing
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
