package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for type-safe error checking
// Use errors.Is() instead of string comparison
var (
	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionAnonymous = errors.New("session is not logged in")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// App errors
	ErrAppNotFound = errors.New("app not found")

	// Repo errors
	ErrRepoNotFound = errors.New("repo not found")
)

// pgUniqueViolation is PostgreSQL error code 23505 (unique_violation)
const pgUniqueViolation = "23505"

// uniqueColumns maps the unique index names from the migrations to the
// column each one protects, so conflicts surface as a structured error
// instead of being pattern-matched out of raw error text.
var uniqueColumns = map[string]string{
	"users_username_unique_idx": "username",
	"users_email_unique_idx":    "email",
	"apps_title_unique_idx":     "title",
	"repos_title_unique_idx":    "title",
}

// UniqueViolationError reports a unique constraint violation with the
// constraint and column identified from the driver error.
type UniqueViolationError struct {
	Constraint string
	Column     string
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("duplicate value for %s (constraint %s)", e.Column, e.Constraint)
}

// AsUniqueViolation extracts a UniqueViolationError from a driver error,
// or returns nil if err is not a unique constraint violation.
func AsUniqueViolation(err error) *UniqueViolationError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}
	return &UniqueViolationError{
		Constraint: pgErr.ConstraintName,
		Column:     uniqueColumns[pgErr.ConstraintName],
	}
}
