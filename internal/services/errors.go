// internal/services/errors.go
package services

import "errors"

// Sentinel errors shared by all services. Handlers translate these to
// HTTP status codes; everything unwrapped falls through as a 500.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrGateway    = errors.New("gateway error")
)
