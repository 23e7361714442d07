package auth

import (
	"errors"
	"fmt"

	"github.com/pogibrader/noted/internal/common"
)

// Reason classifies an Error for the UI layer.
type Reason string

const (
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonEmailNotConfirmed  Reason = "email_not_confirmed"
	ReasonDuplicateEmail     Reason = "duplicate_email"
	ReasonWeakPassword       Reason = "weak_password"
	ReasonTransport          Reason = "transport"
)

// Error is the auth-layer error surfaced to callers. It wraps the backend
// sentinel so errors.Is keeps working.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify wraps a backend error into an Error with the matching reason.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return &Error{Reason: ReasonInvalidCredentials, Err: err}
	case errors.Is(err, common.ErrEmailNotConfirmed):
		return &Error{Reason: ReasonEmailNotConfirmed, Err: err}
	case errors.Is(err, common.ErrUserAlreadyExists):
		return &Error{Reason: ReasonDuplicateEmail, Err: err}
	case errors.Is(err, common.ErrWeakPassword):
		return &Error{Reason: ReasonWeakPassword, Err: err}
	default:
		return &Error{Reason: ReasonTransport, Err: err}
	}
}
