// Package backend defines the boundary to the hosted backend service:
// password authentication with session-change notifications, an equality
// filtered row store, and a no-overwrite object store. Implementations live
// in subpackages; everything above this boundary treats the backend as an
// external collaborator.
package backend

import (
	"context"
	"time"
)

// User is the account embedded in a Session.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// Session is the credential bundle issued by the backend auth subsystem.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is past its expiry at now.
// A zero ExpiresAt is treated as non-expiring.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// AuthChangeFunc receives the new session on every auth state change.
// A nil session means signed out. Delivery is a single serialized stream;
// implementations must never invoke subscribers concurrently.
type AuthChangeFunc func(s *Session)

// SignUpResult is what account creation returns. Session is nil when the
// backend requires email confirmation before issuing credentials.
type SignUpResult struct {
	User    User
	Session *Session
}

// Auth is the password-auth subsystem of the backend.
type Auth interface {
	// CurrentSession returns the session the client currently holds,
	// or nil when signed out.
	CurrentSession() *Session

	// RestoreSession installs a previously persisted session, refreshing it
	// first when expired, and notifies subscribers. Returns the session now
	// in effect.
	RestoreSession(ctx context.Context, s *Session) (*Session, error)

	// SignInWithPassword authenticates with email and password.
	// Sentinels: common.ErrInvalidCredentials, common.ErrEmailNotConfirmed.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignUp creates an account. Metadata is stored on the user record.
	// Sentinels: common.ErrUserAlreadyExists, common.ErrWeakPassword.
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*SignUpResult, error)

	// SignOut revokes the held session and notifies subscribers with nil.
	SignOut(ctx context.Context) error

	// OnAuthStateChange registers fn for session-change notifications and
	// returns an unsubscribe function. Unsubscribing is idempotent.
	OnAuthStateChange(fn AuthChangeFunc) (unsubscribe func())
}

// RowStore is a per-table row storage with equality filters and
// single-column ordering. Row payloads cross the boundary as JSON: Select,
// Insert and Update return a JSON array of the affected rows, which keeps
// this interface identical across the REST and direct-Postgres drivers.
type RowStore interface {
	Select(ctx context.Context, table, eqCol, eqVal, orderCol string, desc bool) ([]byte, error)
	Insert(ctx context.Context, table string, row any) ([]byte, error)
	Update(ctx context.Context, table, idCol, idVal string, changes any) ([]byte, error)
	Delete(ctx context.Context, table, idCol, idVal string) error
}

// ObjectStore is a bucketed object storage. Upload must reject an existing
// key rather than overwrite it (common.ErrKeyExists).
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PublicURL(bucket, key string) string
}
