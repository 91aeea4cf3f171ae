// Package sqlerr specifically handles database driver errors.
//
// It parses error codes from the database drivers (pgx for PostgreSQL,
// modernc for SQLite) and converts them into a small set of categories
// used for diagnostics, and into HTTP errors for the API surface.
package sqlerr

import (
	"errors"
	"fmt"
)

// Category is the coarse failure class attached to every diagnostic.
type Category string

const (
	// Connectivity covers an unreachable engine, a closed handle, I/O and locking failures.
	Connectivity Category = "connectivity"
	// Statement covers malformed SQL and references to missing tables or columns.
	Statement Category = "statement"
	// Constraint covers integrity violations reported by the engine.
	Constraint Category = "constraint"
	// Binding covers parameters the engine or the query template could not accept.
	Binding Category = "binding"
	// Canceled covers context cancellation, deadlines and interrupted statements.
	Canceled Category = "canceled"
	// Driver is everything else.
	Driver Category = "driver"
)

// Code is a finer-grained, engine independent error code.
type Code string

const (
	Other               Code = "other"
	ConnectionFailure   Code = "connection_failure"
	SyntaxError         Code = "syntax_error"
	UndefinedObject     Code = "undefined_object"
	UniqueViolation     Code = "unique_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	NotNullViolation    Code = "not_null_violation"
	CheckViolation      Code = "check_violation"
	InvalidParameter    Code = "invalid_parameter"
	QueryCanceled       Code = "query_canceled"
)

// ErrBinding marks errors raised while turning named parameters into
// positional arguments, before the engine is involved.
var ErrBinding = errors.New("parameter binding failed")

// Error is a classified database error.
//
// DatabaseCode keeps the engine's own code (SQLSTATE or SQLite result code)
// for the logs; Unwrap exposes the original driver error.
type Error struct {
	Category       Category
	Code           Code
	DatabaseCode   string
	Message        string
	TableName      string
	ConstraintName string

	driverErr error
}

func (e *Error) Error() string {
	if e.DatabaseCode != "" {
		return fmt.Sprintf("%s (%s): %s", e.Category, e.DatabaseCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// ErrCode reports the Code of a classified error anywhere in the chain,
// or Other when the chain holds no *Error.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}
