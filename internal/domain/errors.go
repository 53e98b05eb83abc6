package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ValidationPrefix is how ErrValidation appears in a wrapped error string,
// ahead of the detail message.
const ValidationPrefix = "validation error: "

// ErrInvalidRange is returned when a date range ends before it starts.
// It wraps ErrValidation so callers checking for validation failures catch it too.
var ErrInvalidRange = fmt.Errorf("%w: end date is before start date", ErrValidation)

// ErrNoCities is returned when days are requested for a trip with no cities.
// Day generation needs at least one city to assign.
var ErrNoCities = fmt.Errorf("%w: trip has no cities", ErrValidation)
