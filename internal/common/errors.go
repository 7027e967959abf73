// Package common defines shared sentinel errors used across the credential
// service layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound             = errors.New("not found")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Login errors. Deliberately non-specific: the same value is returned
	// for an unknown e-mail and for a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors.
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidSignature   = errors.New("invalid token signature")
	ErrMalformedToken     = errors.New("malformed token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrTokenReuseDetected = errors.New("refresh token reuse detected")
	ErrWrongTokenKind     = errors.New("wrong token kind")
)

// ValidationError carries the itemized password-policy violations. Unlike the
// sentinel errors above it is safe to show to the caller verbatim.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid password: " + strings.Join(e.Violations, "; ")
}
