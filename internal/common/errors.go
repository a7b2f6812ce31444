// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Login errors. Unknown email and wrong password collapse into one value
	// so the caller cannot tell which field failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token errors. ErrMalformedToken and ErrInvalidSignature are kept apart
	// from ErrTokenExpired for internal branching; all of them surface to the
	// caller as ErrUnauthenticated.
	ErrUnauthenticated  = errors.New("could not validate credentials")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidScope     = errors.New("invalid scope for token")
)
