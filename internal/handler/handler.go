// Package handler is the first layer. The first entry point
// for business logic after the router.
//
// It binds and validates path and query parameters using the
// validation package, and calls the flight service. It acts as the
// interface between the HTTP request and the lookups.
package handler
