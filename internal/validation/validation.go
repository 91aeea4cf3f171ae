// Package validation contains the logic for validating
// request data.
//
// It binds path and query parameters with Echo, enforces the
// rules declared in `validate` struct tags with the `validator`
// library, and turns failures into field errors the client can
// understand.
package validation
