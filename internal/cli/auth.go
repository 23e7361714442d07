package cli

import (
	"context"
	"errors"
	"os"

	"github.com/pogibrader/noted/internal/auth"
	"github.com/pogibrader/noted/internal/common"
)

// Login prompts for credentials and signs in. The guard hears about the new
// session through the backend subscription and switches the prompt.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	if err := a.auth.SignIn(opCtx, email, string(password)); err != nil {
		printlnFn(authMessage(err))
		return err
	}
	return nil
}

// SignUp prompts for the new account details and registers. When the
// backend requires email confirmation first, no session is returned and the
// user is told to check their inbox.
func (a *App) SignUp(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	displayName, err := GetSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	res, err := a.auth.SignUp(opCtx, email, string(password), displayName)
	if err != nil {
		printlnFn(authMessage(err))
		return err
	}
	if res.Session == nil {
		printlnFn("Account created. Check your inbox to confirm the email, then 'login'.")
	}
	return nil
}

// Logout revokes the session. Local state clears even when the backend has
// already invalidated the token.
func (a *App) Logout(ctx context.Context) error {
	opCtx, cancel := a.opCtx(ctx)
	defer cancel()

	if err := a.auth.SignOut(opCtx); err != nil {
		printlnFn(authMessage(err))
		return err
	}
	return nil
}

// authMessage turns a classified auth error into a line for the user.
func authMessage(err error) string {
	var ae *auth.Error
	if !errors.As(err, &ae) {
		return "Error: " + err.Error()
	}
	switch ae.Reason {
	case auth.ReasonInvalidCredentials:
		return "Invalid email or password."
	case auth.ReasonEmailNotConfirmed:
		return "Email is not confirmed yet. Check your inbox."
	case auth.ReasonDuplicateEmail:
		return "An account with this email already exists."
	case auth.ReasonWeakPassword:
		return "Password is too weak."
	default:
		return "Error: " + err.Error()
	}
}
