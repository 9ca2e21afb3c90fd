package auth

import "errors"

var (
	// ErrInvalidToken covers malformed tokens, bad signatures, unexpected
	// algorithms and claims that do not name a user.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")
)
