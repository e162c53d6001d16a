package user

import "errors"

var (
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken surfaces the store's unique constraint on email. Duplicate
	// detection lives in the constraint, not in check-then-insert logic, so
	// concurrent registrations race safely.
	ErrEmailTaken = errors.New("email already in use")
)
