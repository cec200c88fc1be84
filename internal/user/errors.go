package user

import "errors"

var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
	ErrMissingEmail = errors.New("email is required")
)
