// Package common defines shared sentinel errors and small helpers used
// across the noted client. Callers should use errors.Is to match the
// sentinel values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Generic flow-control errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("service unavailable")

	// Object-store errors.
	ErrKeyExists = errors.New("key already exists")

	// Auth errors surfaced by the backend auth subsystem.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrUserAlreadyExists  = errors.New("user already registered")
	ErrWeakPassword       = errors.New("password does not meet requirements")

	// Local session state errors.
	ErrNoSession      = errors.New("no stored session")
	ErrSessionExpired = errors.New("session expired")
)
