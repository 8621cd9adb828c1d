package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource (excursion, excursion date, registration, category, user) does
// not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, empty date list).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when the caller's role attempts a mutation
// outside its permitted field set — an admin touching a registration's
// scheduled date, or a regular user touching its status.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned on a cross-entity referential mismatch, such as
// moving a registration to an excursion date that belongs to a different
// excursion. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")
