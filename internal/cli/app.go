// Package cli is the interactive terminal frontend: a read-eval-print loop
// over the auth manager, the route guard and the notes repository.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/pogibrader/noted/internal/auth"
	"github.com/pogibrader/noted/internal/backend"
	"github.com/pogibrader/noted/internal/config"
	"github.com/pogibrader/noted/internal/guard"
	"github.com/pogibrader/noted/internal/logging"
	"github.com/pogibrader/noted/internal/posts"
)

type App struct {
	config *config.Config
	auth   *auth.Manager
	guard  *guard.Guard
	repo   *posts.Repository
	log    logging.Logger
	reader *bufio.Reader

	unsubscribe func()
}

// NewApp wires the command surface. The guard's redirect hooks switch the
// prompt between the signed-in and signed-out command sets; the backend's
// change notifications drive the guard so that a background session expiry
// moves the prompt without user action.
func NewApp(c *config.Config, b backend.Auth, mgr *auth.Manager, repo *posts.Repository, log logging.Logger) *App {
	a := &App{
		config: c,
		auth:   mgr,
		repo:   repo,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}
	a.guard = guard.New(a.onUnauthenticated, a.onAuthenticated)
	a.unsubscribe = b.OnAuthStateChange(a.guard.HandleSession)
	return a
}

// Run bootstraps the session and enters the REPL. It returns when the user
// quits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.auth.Close()
	if a.unsubscribe != nil {
		defer a.unsubscribe()
	}

	if err := a.auth.Bootstrap(ctx); err != nil {
		a.log.Error(ctx, "session bootstrap failed", "err", err)
	}

	// The guard hears about restored sessions through the subscription, but
	// a cold start with no stored session produces no notification. Feed the
	// resolved state explicitly; duplicates are harmless.
	a.guard.HandleSession(a.auth.Session())
	a.guard.SetNavigatorReady()

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.guard.State() == guard.StateAuthenticated
}

func (a *App) getStatus() string {
	switch a.guard.State() {
	case guard.StateAuthenticated:
		if u := a.auth.User(); u != nil {
			return "(" + u.Email + ")"
		}
		return "(signed in)"
	case guard.StateUnauthenticated:
		return "(guest)"
	default:
		return "(...)"
	}
}

// opCtx bounds a single remote operation with the configured timeout.
func (a *App) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) onAuthenticated() {
	u := a.auth.User()
	if u == nil {
		return
	}
	printlnFn("Signed in as " + u.Email)

	ctx, cancel := context.WithTimeout(context.Background(), a.config.RequestTimeout)
	defer cancel()
	if _, err := a.repo.List(ctx, u.ID); err != nil {
		a.log.Warn(ctx, "initial notes fetch failed", "err", err)
	}
}

func (a *App) onUnauthenticated() {
	printlnFn("Signed out. Type 'login' or 'signup' to continue.")
}
