package repository

import "errors"

var (
	// ErrNotFound is returned when the referenced row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when a seller registration collides with
	// an existing login email.
	ErrDuplicateEmail = errors.New("email already registered")
)
