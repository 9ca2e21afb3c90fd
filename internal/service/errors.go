package service

import "errors"

// Sentinel errors returned by the services. Unexpected failures are wrapped
// and returned as-is; callers should treat anything not matching one of these
// as an internal error.
var (
	// ErrUnauthenticated means the presented token is missing, malformed,
	// badly signed or no longer in its user's token set.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidInput means the request failed validation, including any
	// attempt to set a record's owner.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateIdentity means the email is already registered.
	ErrDuplicateIdentity = errors.New("identity already exists")

	// ErrNotFound means the record does not exist or is owned by someone
	// else. The two cases are deliberately not distinguished.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials means the email is unknown or the password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
