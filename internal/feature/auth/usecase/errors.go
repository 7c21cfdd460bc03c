// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"

	"medicine_backend/internal/shared/apperr"
)

var (
	// ErrUserNotFound is returned by repositories when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = apperr.New(apperr.ErrConflict, "User already exists")

	// ErrMissingFields is returned when name, email or password is absent.
	ErrMissingFields = apperr.New(apperr.ErrValidation, "Please enter all fields")

	// ErrPasswordTooLong is returned when the password exceeds what bcrypt can hash.
	ErrPasswordTooLong = apperr.New(apperr.ErrValidation, "Password must be at most 72 bytes")

	// ErrMissingCredentials is returned when login is attempted without email or password.
	ErrMissingCredentials = apperr.New(apperr.ErrValidation, "Please enter email and password")

	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthenticated, "Invalid credentials")
)
