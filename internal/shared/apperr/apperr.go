// Package apperr defines the error categories shared by all features and
// their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Error categories. Feature errors unwrap to one of these so that the
// transport layer can pick a status code without knowing feature internals.
var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates that the request collides with existing state (e.g. duplicate email).
	ErrConflict = errors.New("conflict")

	// ErrUnauthenticated indicates missing, invalid or expired credentials.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound indicates that a record is absent or not visible to the caller.
	ErrNotFound = errors.New("not found")
)

// Error is a categorised error whose message is safe to show to clients.
type Error struct {
	kind error
	msg  string
}

// New returns an error in category kind carrying a client-facing message.
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the category to errors.Is.
func (e *Error) Unwrap() error { return e.kind }

// HTTPStatus returns the status code for err. Uncategorised errors are 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsServerError reports whether err falls outside every known category.
func IsServerError(err error) bool {
	return HTTPStatus(err) == http.StatusInternalServerError
}

// Message returns the client-facing text for err. Details of uncategorised
// errors are withheld and belong in the server log.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if IsServerError(err) {
		return "Server error"
	}
	return err.Error()
}
