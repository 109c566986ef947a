package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// Unique constraints declared in migrations.
const (
	constraintUsersEmail    = "users_email_lower_key"
	constraintUsersGoogleID = "users_google_id_key"
)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// uniqueViolationError maps a users unique violation to the store sentinel.
// It returns nil when err is not a known violation.
func uniqueViolationError(err error) error {
	if !isUniqueViolation(err) {
		return nil
	}
	var pgErr *pgconn.PgError
	errors.As(err, &pgErr)
	switch pgErr.ConstraintName {
	case constraintUsersGoogleID:
		return ErrGoogleIDExists
	default:
		return ErrEmailExists
	}
}
