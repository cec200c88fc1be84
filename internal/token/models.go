package token

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrMalformed        = wrapUnauthenticated("malformed token")
	ErrInvalidSignature = wrapUnauthenticated("invalid token signature")
	ErrExpired          = wrapUnauthenticated("token expired")
)

// reserved claims are set by the service and never taken from the caller.
var reservedClaims = []string{"exp", "iat", "nbf"}

// Claims is the caller-supplied identity payload embedded in a token.
type Claims map[string]any

// Session is a verified token: the caller-supplied claims plus the times the
// service stamped on them.
type Session struct {
	Claims    Claims
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Email returns the normalized email claim, or "" when absent.
func (s *Session) Email() string {
	if s == nil {
		return ""
	}
	email, _ := s.Claims["email"].(string)
	return strings.ToLower(strings.TrimSpace(email))
}

type authError struct {
	msg string
}

func (e *authError) Error() string { return e.msg }

func (e *authError) Unwrap() error { return ErrUnauthenticated }

func wrapUnauthenticated(msg string) error {
	return &authError{msg: msg}
}
