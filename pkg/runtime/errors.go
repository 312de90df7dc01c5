// Package runtime provides the connection pool, transactions and the error
// taxonomy shared by the builder and the store.
package runtime

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidModel is returned when an invalid model is provided.
	ErrInvalidModel = errors.New("invalid model")

	// ErrDuplicateKey is returned when a unique constraint is violated.
	ErrDuplicateKey = errors.New("duplicate key value")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrNotNullViolation is returned when a required column is missing.
	ErrNotNullViolation = errors.New("not null violation")

	// ErrCheckViolation is returned when a CHECK constraint rejects a row.
	ErrCheckViolation = errors.New("check constraint violation")

	// ErrNoConnection is returned when no database connection is available.
	ErrNoConnection = errors.New("no database connection")
)

// SQLSTATE codes of the integrity constraint violation class.
const (
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeCheckViolation      = "23514"
)

// ConstraintError describes a constraint the database rejected a write
// with. It unwraps to one of the constraint sentinels.
type ConstraintError struct {
	Kind       error // ErrDuplicateKey, ErrForeignKeyViolation, ErrNotNullViolation or ErrCheckViolation
	Table      string
	Column     string
	Constraint string
	Detail     string
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	msg := e.Kind.Error()
	if e.Table != "" {
		msg += " on " + e.Table
	}
	if e.Constraint != "" {
		msg += fmt.Sprintf(" (constraint %s)", e.Constraint)
	} else if e.Column != "" {
		msg += fmt.Sprintf(" (column %s)", e.Column)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the sentinel for the violated constraint kind.
func (e *ConstraintError) Unwrap() error {
	return e.Kind
}

// TranslateError maps PostgreSQL integrity violations to ConstraintError.
// Any other error is returned unchanged.
func TranslateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var kind error
	switch pgErr.Code {
	case codeUniqueViolation:
		kind = ErrDuplicateKey
	case codeForeignKeyViolation:
		kind = ErrForeignKeyViolation
	case codeNotNullViolation:
		kind = ErrNotNullViolation
	case codeCheckViolation:
		kind = ErrCheckViolation
	default:
		return err
	}

	return &ConstraintError{
		Kind:       kind,
		Table:      pgErr.TableName,
		Column:     pgErr.ColumnName,
		Constraint: pgErr.ConstraintName,
		Detail:     pgErr.Detail,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Unwrap makes validation errors match ErrInvalidModel.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidModel
}

// QueryError represents a query execution error.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v\nQuery: %s", e.Err, e.Query)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// MigrationError represents a migration error.
type MigrationError struct {
	Version string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration error (version %s): %s: %v", e.Version, e.Message, e.Err)
}

// Unwrap returns the underlying error.
func (e *MigrationError) Unwrap() error {
	return e.Err
}
