package services

import "errors"

// Every reservation mutation fails with exactly one of these; the HTTP layer
// maps them to status codes. All of them abort the enclosing transaction, so
// a failed operation leaves no partial writes behind.
var (
	ErrBathNotFound        = errors.New("bath not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrStatusNotFound      = errors.New("reservation status not found")
	ErrReceiptNotFound     = errors.New("entrance document not found")
	ErrValidation          = errors.New("validation error")
	ErrScheduleConflict    = errors.New("reservation overlaps an existing one")
	ErrInsufficientStock   = errors.New("insufficient stock")
	// ErrConcurrencyConflict is returned only after the bounded retry loop
	// gave up on serialization failures. It is the one transient error.
	ErrConcurrencyConflict = errors.New("concurrent calendar update, try again")
)
