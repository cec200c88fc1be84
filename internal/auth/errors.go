package auth

import "errors"

var (
	// ErrForbidden is returned by guards when an authenticated caller lacks the
	// ownership or role a route requires.
	ErrForbidden = errors.New("forbidden")
	ErrNoSession = errors.New("no authenticated session on request")
)
