// Package supabase implements the backend boundary against a
// Supabase-compatible service: GoTrue password auth, a PostgREST row store,
// and the storage HTTP API. The client is thin request/response glue; it
// holds the current session, fans out auth-change notifications, and
// refreshes the access token ahead of expiry.
package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pogibrader/noted/internal/backend"
	"github.com/pogibrader/noted/internal/common"
	"github.com/pogibrader/noted/internal/logging"
)

// refreshMargin is how long before access-token expiry the client refreshes.
const refreshMargin = 30 * time.Second

// Client talks to a Supabase-compatible backend. It implements
// backend.Auth, backend.RowStore and backend.ObjectStore.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	log      logging.Logger

	mu           sync.Mutex
	session      *backend.Session
	subs         map[int]backend.AuthChangeFunc
	nextSub      int
	refreshTimer *time.Timer
	closed       bool

	// notifyMu serializes subscriber delivery into a single stream.
	notifyMu sync.Mutex
}

// New constructs a Client for the given endpoint URL and public API key.
// Both are required. A nil httpc falls back to a client with a 30s timeout;
// a nil log falls back to a logger that discards everything.
func New(endpoint, apiKey string, httpc *http.Client, log logging.Logger) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("backend endpoint URL is required")
	}
	if apiKey == "" {
		return nil, errors.New("backend API key is required")
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     httpc,
		log:      log,
		subs:     make(map[int]backend.AuthChangeFunc),
	}, nil
}

// Close stops the background refresh timer and drops all subscribers.
// The client must not be used afterwards.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	c.subs = make(map[int]backend.AuthChangeFunc)
}

// do performs an HTTP request with the standard apikey/authorization headers.
// The bearer token is the current access token when a session is held,
// otherwise the public API key. Every request carries a generated
// X-Request-ID so failures can be correlated with server-side logs.
func (c *Client) do(ctx context.Context, method, url string, body []byte, hdr map[string]string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}

	reqID := uuid.NewString()
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", method, "url", url, "request_id", reqID, "err", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return resp, nil
}

func (c *Client) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.apiKey
}

// readBody drains and closes the response body.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
