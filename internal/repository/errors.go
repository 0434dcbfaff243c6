package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when the username unique index rejects an insert.
	ErrDuplicateUsername = errors.New("duplicate username")
	// ErrDuplicateEmail is returned when the email unique index rejects an insert.
	ErrDuplicateEmail = errors.New("duplicate email")
)
