package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pogibrader/noted/internal/backend"
	"github.com/pogibrader/noted/internal/common"
)

// authResponse covers both token-grant and signup responses. Signup without
// auto-confirm returns a bare user object (top-level id/email), while grants
// return the token bundle with the user nested.
type authResponse struct {
	AccessToken  string         `json:"access_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	ExpiresAt    int64          `json:"expires_at"`
	RefreshToken string         `json:"refresh_token"`
	User         *authUser      `json:"user"`
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Metadata     map[string]any `json:"user_metadata"`
}

type authUser struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// authError is the GoTrue error payload; older deployments use the
// error/error_description pair instead of error_code/msg.
type authError struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Error_           string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// CurrentSession returns the session the client holds, or nil.
func (c *Client) CurrentSession() *backend.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SignInWithPassword performs the password grant. Invalid credentials and
// unconfirmed accounts map onto the shared sentinels.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})

	s, err := c.tokenRequest(ctx, c.endpoint+"/auth/v1/token?grant_type=password", body)
	if err != nil {
		return nil, err
	}

	c.installSession(s)
	return s, nil
}

// SignUp creates an account. The metadata map is stored on the user record
// (the original keeps the display name there). When the backend requires
// email confirmation, the result carries a nil Session.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*backend.SignUpResult, error) {
	payload := map[string]any{"email": email, "password": password}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}
	body, _ := json.Marshal(payload)

	resp, err := c.do(ctx, http.MethodPost, c.endpoint+"/auth/v1/signup", body, nil)
	if err != nil {
		return nil, err
	}
	raw, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read signup response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, mapAuthError(resp.StatusCode, raw)
	}

	var ar authResponse
	if err := json.Unmarshal(raw, &ar); err != nil {
		return nil, fmt.Errorf("decode signup response: %w", err)
	}

	res := &backend.SignUpResult{}
	if ar.AccessToken != "" {
		s := ar.toSession()
		res.Session = s
		res.User = s.User
		c.installSession(s)
	} else {
		// Confirmation pending: only the user object comes back.
		res.User = backend.User{ID: ar.ID, Email: ar.Email, Metadata: ar.Metadata}
		if ar.User != nil {
			res.User = backend.User{ID: ar.User.ID, Email: ar.User.Email, Metadata: ar.User.Metadata}
		}
	}
	return res, nil
}

// SignOut revokes the session server-side, then clears the held session and
// notifies subscribers with nil. Per the original contract it fails only on
// transport failure; an auth-level rejection still clears local state.
func (c *Client) SignOut(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, c.endpoint+"/auth/v1/logout", nil, nil)
	if err != nil {
		return err
	}
	_, _ = readBody(resp)

	c.installSession(nil)
	return nil
}

// RestoreSession installs a persisted session, refreshing it first when it
// is expired or inside the refresh margin.
func (c *Client) RestoreSession(ctx context.Context, s *backend.Session) (*backend.Session, error) {
	if s == nil {
		return nil, common.ErrNoSession
	}

	if s.Expired(time.Now().Add(refreshMargin)) {
		refreshed, err := c.refreshSession(ctx, s.RefreshToken)
		if err != nil {
			return nil, err
		}
		s = refreshed
	}

	c.installSession(s)
	return s, nil
}

// OnAuthStateChange registers fn and returns an idempotent unsubscribe.
func (c *Client) OnAuthStateChange(fn backend.AuthChangeFunc) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Client) refreshSession(ctx context.Context, refreshToken string) (*backend.Session, error) {
	if refreshToken == "" {
		return nil, common.ErrSessionExpired
	}
	body, _ := json.Marshal(map[string]string{"refresh_token": refreshToken})
	return c.tokenRequest(ctx, c.endpoint+"/auth/v1/token?grant_type=refresh_token", body)
}

func (c *Client) tokenRequest(ctx context.Context, url string, body []byte) (*backend.Session, error) {
	resp, err := c.do(ctx, http.MethodPost, url, body, nil)
	if err != nil {
		return nil, err
	}
	raw, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, mapAuthError(resp.StatusCode, raw)
	}

	var ar authResponse
	if err := json.Unmarshal(raw, &ar); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return ar.toSession(), nil
}

func (ar *authResponse) toSession() *backend.Session {
	s := &backend.Session{
		AccessToken:  ar.AccessToken,
		RefreshToken: ar.RefreshToken,
		TokenType:    ar.TokenType,
	}
	switch {
	case ar.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(ar.ExpiresAt, 0)
	case ar.ExpiresIn > 0:
		s.ExpiresAt = time.Now().Add(time.Duration(ar.ExpiresIn) * time.Second)
	}
	if ar.User != nil {
		s.User = backend.User{ID: ar.User.ID, Email: ar.User.Email, Metadata: ar.User.Metadata}
	}
	return s
}

// installSession replaces the held session, reschedules the refresh timer
// and delivers the change notification.
func (c *Client) installSession(s *backend.Session) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.session = s
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	if s != nil && !s.ExpiresAt.IsZero() {
		d := time.Until(s.ExpiresAt) - refreshMargin
		if d < 0 {
			d = 0
		}
		c.refreshTimer = time.AfterFunc(d, c.backgroundRefresh)
	}
	subs := make([]backend.AuthChangeFunc, 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

// backgroundRefresh runs off the refresh timer. Failures are logged, never
// retried; the next user-triggered call surfaces the auth error.
func (c *Client) backgroundRefresh() {
	c.mu.Lock()
	cur := c.session
	c.mu.Unlock()
	if cur == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s, err := c.refreshSession(ctx, cur.RefreshToken)
	if err != nil {
		c.log.Warn(ctx, "token refresh failed", "err", err)
		return
	}
	c.installSession(s)
}

// mapAuthError translates a GoTrue error payload onto the shared sentinels.
func mapAuthError(status int, raw []byte) error {
	var ae authError
	_ = json.Unmarshal(raw, &ae)

	code := ae.ErrorCode
	if code == "" {
		code = ae.Error_
	}
	msg := ae.Msg
	if msg == "" {
		msg = ae.ErrorDescription
	}

	switch {
	// Checked before invalid_grant: legacy GoTrue reports an unconfirmed
	// account as {"error":"invalid_grant","error_description":"Email not
	// confirmed"}.
	case code == "email_not_confirmed" || strings.Contains(msg, "Email not confirmed"):
		return fmt.Errorf("%w: %s", common.ErrEmailNotConfirmed, msg)
	case code == "invalid_credentials" || code == "invalid_grant":
		return fmt.Errorf("%w: %s", common.ErrInvalidCredentials, msg)
	case code == "user_already_exists" || code == "email_exists" ||
		strings.Contains(msg, "already registered"):
		return fmt.Errorf("%w: %s", common.ErrUserAlreadyExists, msg)
	case code == "weak_password" || strings.Contains(msg, "Password should"):
		return fmt.Errorf("%w: %s", common.ErrWeakPassword, msg)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
	}
	return fmt.Errorf("auth request failed: status %d: %s", status, msg)
}
