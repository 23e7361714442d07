package posts

import (
	"errors"
	"fmt"
)

// ErrBusy rejects a mutation while another one is in flight for the same
// note. The original client allowed overlapping submissions and could
// corrupt its local list; rejecting is a deliberate tightening.
var ErrBusy = errors.New("another mutation is in flight")

// ValidationError reports a missing required field. It is raised before any
// network call.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s is required", e.Field)
}

// RepositoryError covers row-store transport and permission failures.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("posts: %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func validate(title, description string) error {
	if title == "" {
		return &ValidationError{Field: "title"}
	}
	if description == "" {
		return &ValidationError{Field: "description"}
	}
	return nil
}
