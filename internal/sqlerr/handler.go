package sqlerr

import (
	"database/sql"
	"errors"

	"github.com/deppfellow/flight-data/internal/errs"
)

// HandleError converts a low-level database error into an application-level error.
//
// Output:
//   - If already *errs.HTTPError: returned unchanged
//   - sql.ErrNoRows: 404
//   - Connectivity: 503, the engine is unavailable
//   - Binding: 400
//   - Canceled: 503
//   - Otherwise: 500 without leaking driver details
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	sqlErr := Convert(err)
	code := "DATABASE_" + errs.MakeUpperCaseWithUnderscores(string(sqlErr.Category))

	switch sqlErr.Category {
	case Connectivity, Canceled:
		return errs.NewServiceUnavailableError("The flight database is currently unavailable", &code)
	case Binding:
		return errs.NewBadRequestError("One or more parameters were rejected by the database", false, &code, nil)
	default:
		return errs.NewInternalServerError()
	}
}
