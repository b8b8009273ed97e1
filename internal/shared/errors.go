package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. Unknown emails and wrong
	// passwords both map to it.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail occurs when an email is already registered, whether
	// caught by a lookup or by the store's unique constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)
