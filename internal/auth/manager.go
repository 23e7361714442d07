// Package auth holds the client-side session lifecycle: bootstrap of any
// persisted session, subscription to backend session changes, and the
// sign-in/sign-up/sign-out operations. The Manager is an explicit,
// constructed object passed by reference to whoever owns the UI; there is
// no ambient global.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pogibrader/noted/internal/backend"
	"github.com/pogibrader/noted/internal/common"
	"github.com/pogibrader/noted/internal/logging"
	"github.com/pogibrader/noted/internal/session"
)

// persistTimeout bounds the storage writes triggered by change notifications.
const persistTimeout = 5 * time.Second

// Manager owns the current session and user.
//
// Contract:
//   - Bootstrap must run exactly once at process start.
//   - Change notifications replace session and user atomically and are
//     idempotent: re-delivering an identical session is a no-op.
//   - After Close no state is updated.
type Manager struct {
	backend backend.Auth
	store   *session.Store
	log     logging.Logger

	mu           sync.Mutex
	session      *backend.Session
	user         *backend.User
	loading      bool
	bootstrapped bool
	closed       bool
	unsub        func()
}

func NewManager(b backend.Auth, store *session.Store, log logging.Logger) *Manager {
	return &Manager{backend: b, store: store, log: log, loading: true}
}

// Bootstrap subscribes to session-change notifications and restores any
// persisted session. The loading flag drops once resolution finishes,
// whether or not a session was found. Calling Bootstrap twice is an error.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	if m.bootstrapped {
		m.mu.Unlock()
		return errors.New("auth manager already bootstrapped")
	}
	m.bootstrapped = true
	m.mu.Unlock()

	unsub := m.backend.OnAuthStateChange(m.onSessionChange)
	m.mu.Lock()
	m.unsub = unsub
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	persisted, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoSession) {
			return nil
		}
		return err
	}

	// RestoreSession notifies; onSessionChange picks the state up.
	if _, err := m.backend.RestoreSession(ctx, persisted); err != nil {
		m.log.Warn(ctx, "persisted session could not be restored", "err", err)
		if cerr := m.store.Clear(ctx); cerr != nil {
			m.log.Error(ctx, "failed to clear stale session", "err", cerr)
		}
	}
	return nil
}

// onSessionChange is the single delivery stream from the backend client.
func (m *Manager) onSessionChange(s *backend.Session) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if sameSession(m.session, s) {
		m.loading = false
		m.mu.Unlock()
		return
	}
	m.session = s
	if s != nil {
		u := s.User
		m.user = &u
	} else {
		m.user = nil
	}
	m.loading = false
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := m.store.Save(ctx, s); err != nil {
		m.log.Error(ctx, "failed to persist session", "err", err)
	}
}

// Session returns the current session, or nil when signed out.
func (m *Manager) Session() *backend.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// User returns the current user, or nil when signed out.
func (m *Manager) User() *backend.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// IsLoading reports whether session bootstrap is still resolving.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// SignIn authenticates with email and password. State is updated through
// the change notification, not through the return value.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	if _, err := m.backend.SignInWithPassword(ctx, email, password); err != nil {
		return classify(err)
	}
	return nil
}

// SignUp creates an account, carrying the display name in user metadata.
// The result's Session is nil when the backend requires email verification
// first; whether an immediate SignIn then succeeds is up to the backend.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName string) (*backend.SignUpResult, error) {
	res, err := m.backend.SignUp(ctx, email, password, map[string]any{"fullName": displayName})
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

// SignOut revokes the session. It fails only on transport failure.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.backend.SignOut(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// Close unsubscribes from change notifications; the manager stops updating
// state afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	unsub := m.unsub
	m.unsub = nil
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func sameSession(a, b *backend.Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.AccessToken == b.AccessToken
}
