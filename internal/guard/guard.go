// Package guard decides which screen group the user belongs in. It is a
// small state machine fed by session-change notifications on one side and
// navigator readiness on the other; redirect hooks fire only when a state is
// actually entered, so duplicate notifications are harmless.
package guard

import (
	"sync"

	"github.com/pogibrader/noted/internal/backend"
)

// State is the guard's position in the auth flow.
type State int

const (
	// StateBootstrapping holds until both the session is resolved and the
	// navigator reports ready. Redirecting on only one of the two risks
	// navigating before navigation can accept it.
	StateBootstrapping State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Guard loops between Unauthenticated and Authenticated for the app
// lifetime; there is no terminal state.
type Guard struct {
	mu              sync.Mutex
	state           State
	navReady        bool
	sessionResolved bool
	hasSession      bool

	onUnauthenticated func()
	onAuthenticated   func()
}

// New constructs a Guard with the redirect hooks for each screen group.
// Nil hooks are allowed.
func New(onUnauthenticated, onAuthenticated func()) *Guard {
	return &Guard{
		state:             StateBootstrapping,
		onUnauthenticated: onUnauthenticated,
		onAuthenticated:   onAuthenticated,
	}
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// SetNavigatorReady marks the navigation subsystem ready. Idempotent.
func (g *Guard) SetNavigatorReady() {
	g.mu.Lock()
	g.navReady = true
	g.mu.Unlock()
	g.evaluate()
}

// HandleSession feeds a session-change notification into the guard.
// A nil session means signed out. Safe to call with identical values.
func (g *Guard) HandleSession(s *backend.Session) {
	g.mu.Lock()
	g.sessionResolved = true
	g.hasSession = s != nil
	g.mu.Unlock()
	g.evaluate()
}

// evaluate applies the transition rules and fires the redirect hook when a
// state is entered. The hook runs outside the lock.
func (g *Guard) evaluate() {
	g.mu.Lock()

	next := g.state
	switch g.state {
	case StateBootstrapping:
		// Both preconditions are required to leave bootstrapping.
		if g.navReady && g.sessionResolved {
			next = StateUnauthenticated
			if g.hasSession {
				next = StateAuthenticated
			}
		}
	default:
		if g.sessionResolved {
			next = StateUnauthenticated
			if g.hasSession {
				next = StateAuthenticated
			}
		}
	}

	if next == g.state {
		g.mu.Unlock()
		return
	}
	g.state = next

	var hook func()
	switch next {
	case StateUnauthenticated:
		hook = g.onUnauthenticated
	case StateAuthenticated:
		hook = g.onAuthenticated
	}
	g.mu.Unlock()

	if hook != nil {
		hook()
	}
}
