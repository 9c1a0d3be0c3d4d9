package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrDuplicateUsername    = errors.New("username already taken")
	ErrInvalidProviderToken = errors.New("invalid provider token")
	ErrInvalidOTP           = errors.New("invalid or expired code")
	ErrDeliveryFailed       = errors.New("failed to deliver email")
)

// ProviderAuthError wraps a failure while talking to an external identity
// provider. The underlying cause is kept for server-side logs; it must never
// reach a client response.
type ProviderAuthError struct {
	Provider string
	Err      error
}

func (e *ProviderAuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %v", e.Provider, e.Err)
}

func (e *ProviderAuthError) Unwrap() error { return e.Err }
