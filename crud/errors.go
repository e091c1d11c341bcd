package crud

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the failure classes every storage backend maps into.
// Adapters never surface their native errors past their boundary; they wrap
// one of these instead.
var (
	// ErrInvalidQuery marks malformed conditions, unknown operators and
	// unknown filter/sort fields. Always rejected before any backend call.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNotFound marks a primary-key or filter lookup miss.
	ErrNotFound = errors.New("record not found")

	// ErrConstraintViolation marks a uniqueness or foreign-key conflict on write.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrValidation marks a payload that fails the entity shape.
	ErrValidation = errors.New("validation failed")

	// ErrBackend wraps an opaque storage-engine failure. Not interpreted further
	// and never retried.
	ErrBackend = errors.New("backend error")
)

// InvalidQueryf wraps ErrInvalidQuery with a caller-facing detail message.
func InvalidQueryf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidQuery}, args...)...)
}

// ValidationErrorf wraps ErrValidation with a caller-facing detail message.
func ValidationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// BackendError wraps an opaque storage-engine error.
func BackendError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrBackend, err)
}

// HTTPStatus maps a failure class to the HTTP status the generated
// endpoints respond with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
