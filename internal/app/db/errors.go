package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"chatterbox/internal/app/user"
)

// Unique constraint names declared in migrations/00001_create_users.sql.
const (
	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// IsUniqueViolation checks if the error is a PostgreSQL unique constraint violation (code 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// mapUserConstraint translates a unique violation on the users table into the
// matching user store error. Any other error is returned unchanged.
func mapUserConstraint(err error) error {
	if !IsUniqueViolation(err) {
		return err
	}

	var pgErr *pgconn.PgError
	errors.As(err, &pgErr)

	switch pgErr.ConstraintName {
	case constraintUsername:
		return user.ErrDuplicateUsername
	case constraintEmail:
		return user.ErrDuplicateEmail
	}
	return err
}
