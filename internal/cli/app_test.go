package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pogibrader/noted/internal/auth"
	"github.com/pogibrader/noted/internal/common"
	"github.com/pogibrader/noted/internal/posts"
)

func TestAuthMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid credentials", &auth.Error{Reason: auth.ReasonInvalidCredentials, Err: common.ErrInvalidCredentials},
			"Invalid email or password."},
		{"email not confirmed", &auth.Error{Reason: auth.ReasonEmailNotConfirmed, Err: common.ErrEmailNotConfirmed},
			"Email is not confirmed yet. Check your inbox."},
		{"duplicate email", &auth.Error{Reason: auth.ReasonDuplicateEmail, Err: common.ErrUserAlreadyExists},
			"An account with this email already exists."},
		{"weak password", &auth.Error{Reason: auth.ReasonWeakPassword, Err: common.ErrWeakPassword},
			"Password is too weak."},
		{"transport falls through", &auth.Error{Reason: auth.ReasonTransport, Err: common.ErrUnavailable},
			"Error: auth: transport: service unavailable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, authMessage(tc.err))
		})
	}
}

func TestMutationMessage(t *testing.T) {
	assert.Equal(t, "The title cannot be empty.", mutationMessage(&posts.ValidationError{Field: "title"}))
	assert.Equal(t, "Previous change is still in progress, try again.",
		mutationMessage(fmt.Errorf("%w: p1", posts.ErrBusy)))
}
