package service

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateUsername is returned when registering a username that is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrQueryNotFound is returned when a query id matches no row, or an update touched none.
	ErrQueryNotFound = errors.New("query not found")
	// ErrStore marks a persistence failure. Its message is safe to show to callers; the
	// wrapped cause is not.
	ErrStore = errors.New("internal storage error")
)

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
