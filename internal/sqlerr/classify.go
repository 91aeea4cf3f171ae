package sqlerr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Classify returns the failure category of err. A nil error has no category.
func Classify(err error) Category {
	if err == nil {
		return ""
	}
	return Convert(err).Category
}

// Convert turns any error returned while talking to the database into *Error.
// Errors that already are *Error are returned unchanged.
func Convert(err error) *Error {
	if err == nil {
		return nil
	}

	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ConvertPgError(pgErr)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return ConvertSQLiteError(liteErr)
	}

	out := &Error{Category: Driver, Code: Other, Message: err.Error(), driverErr: err}

	var connectErr *pgconn.ConnectError
	var netErr net.Error

	switch {
	case errors.Is(err, ErrBinding):
		out.Category, out.Code = Binding, InvalidParameter
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		out.Category, out.Code = Canceled, QueryCanceled
	case errors.As(err, &connectErr),
		errors.As(err, &netErr),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, driver.ErrBadConn),
		isClosedHandle(err):
		out.Category, out.Code = Connectivity, ConnectionFailure
	}

	return out
}

// isClosedHandle detects database/sql's unexported "database is closed" error.
func isClosedHandle(err error) bool {
	return strings.Contains(err.Error(), "sql: database is closed")
}

// ConvertPgError maps a PostgreSQL error by SQLSTATE class.
func ConvertPgError(src *pgconn.PgError) *Error {
	out := &Error{
		Category:       Driver,
		Code:           Other,
		DatabaseCode:   src.Code,
		Message:        src.Message,
		TableName:      src.TableName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}

	switch src.Code {
	case "23505":
		out.Category, out.Code = Constraint, UniqueViolation
		return out
	case "23503":
		out.Category, out.Code = Constraint, ForeignKeyViolation
		return out
	case "23502":
		out.Category, out.Code = Constraint, NotNullViolation
		return out
	case "23514":
		out.Category, out.Code = Constraint, CheckViolation
		return out
	case "42601":
		out.Category, out.Code = Statement, SyntaxError
		return out
	case "42P01", "42703", "42883":
		out.Category, out.Code = Statement, UndefinedObject
		return out
	case "57014":
		out.Category, out.Code = Canceled, QueryCanceled
		return out
	case "57P01", "57P02", "57P03":
		out.Category, out.Code = Connectivity, ConnectionFailure
		return out
	}

	if len(src.Code) < 2 {
		return out
	}

	switch src.Code[:2] {
	case "08", "53":
		out.Category, out.Code = Connectivity, ConnectionFailure
	case "22":
		out.Category, out.Code = Binding, InvalidParameter
	case "23":
		out.Category = Constraint
	case "42":
		out.Category = Statement
	}

	return out
}

// ConvertSQLiteError maps a SQLite error by its primary result code.
func ConvertSQLiteError(src *sqlite.Error) *Error {
	code := src.Code()
	out := &Error{
		Category:     Driver,
		Code:         Other,
		DatabaseCode: strconv.Itoa(code),
		Message:      src.Error(),
		driverErr:    src,
	}

	switch code & 0xff {
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_IOERR,
		sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CORRUPT:
		out.Category, out.Code = Connectivity, ConnectionFailure
	case sqlite3.SQLITE_CONSTRAINT:
		out.Category = Constraint
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			out.Code = UniqueViolation
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			out.Code = ForeignKeyViolation
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			out.Code = NotNullViolation
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			out.Code = CheckViolation
		}
	case sqlite3.SQLITE_MISMATCH, sqlite3.SQLITE_RANGE:
		out.Category, out.Code = Binding, InvalidParameter
	case sqlite3.SQLITE_INTERRUPT:
		out.Category, out.Code = Canceled, QueryCanceled
	case sqlite3.SQLITE_ERROR:
		out.Category = Statement
		msg := strings.ToLower(src.Error())
		switch {
		case strings.Contains(msg, "syntax error"):
			out.Code = SyntaxError
		case strings.Contains(msg, "no such"):
			out.Code = UndefinedObject
		}
	}

	return out
}
