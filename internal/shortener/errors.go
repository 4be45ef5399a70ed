package shortener

import "errors"

var (
	// ErrInvalidInput is returned when the client supplied a missing or malformed URL.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorage wraps any failure of the underlying repository.
	ErrStorage = errors.New("storage error")

	// ErrNotFound is returned by repositories when no mapping matches.
	ErrNotFound = errors.New("url not found")
	// ErrCodeExists is returned by repositories when the short code is already taken.
	ErrCodeExists = errors.New("short code already exists")
	// ErrURLExists is returned by repositories when the long URL is already mapped.
	ErrURLExists = errors.New("long url already exists")
)

// ValidationError describes why a long URL was rejected.
// It unwraps to ErrInvalidInput.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
