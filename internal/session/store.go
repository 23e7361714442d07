package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pogibrader/noted/internal/backend"
	"github.com/pogibrader/noted/internal/common"
	"github.com/pogibrader/noted/internal/cryptox"
)

const (
	keySession      = "session"
	keyDeviceSecret = "device_secret"
)

// sealedRecord is the on-disk layout of the persisted session.
type sealedRecord struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Store persists the session through a Storage adapter.
type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Save seals the session and writes it under the fixed session key.
func (s *Store) Save(ctx context.Context, sess *backend.Session) error {
	if sess == nil {
		return s.Clear(ctx)
	}

	secret, err := s.deviceSecret(ctx)
	if err != nil {
		return err
	}

	salt := common.GenerateRandByteArray(16)
	key := cryptox.DeriveSealKey(secret, salt)
	defer common.WipeByteArray(key)

	ct, nonce, err := cryptox.SealJSON(sess, key)
	if err != nil {
		return fmt.Errorf("seal session: %w", err)
	}

	raw, err := json.Marshal(sealedRecord{Salt: salt, Nonce: nonce, Ciphertext: ct})
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, keySession, raw)
}

// Load reads and unseals the persisted session. Missing or unreadable state
// maps onto common.ErrNoSession: a corrupt record is treated as signed out,
// not as a fatal startup error.
func (s *Store) Load(ctx context.Context) (*backend.Session, error) {
	raw, err := s.storage.Get(ctx, keySession)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNoSession
		}
		return nil, err
	}

	var rec sealedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, common.ErrNoSession
	}

	secret, err := s.deviceSecret(ctx)
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveSealKey(secret, rec.Salt)
	defer common.WipeByteArray(key)

	var sess backend.Session
	if err := cryptox.OpenJSON(rec.Ciphertext, rec.Nonce, key, &sess); err != nil {
		return nil, common.ErrNoSession
	}

	if sess.ExpiresAt.IsZero() {
		if exp, err := TokenExpiry(sess.AccessToken); err == nil {
			sess.ExpiresAt = exp
		}
	}
	return &sess, nil
}

// Clear removes the persisted session. Removing an absent session is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	return s.storage.Remove(ctx, keySession)
}

// deviceSecret returns the per-device random secret, creating it on first
// use. The read-or-create is atomic in the storage adapter, so concurrent
// callers end up sealing with the same secret.
func (s *Store) deviceSecret(ctx context.Context) ([]byte, error) {
	return s.storage.GetOrSet(ctx, keyDeviceSecret, common.GenerateRandByteArray(32))
}

// TokenExpiry extracts the expiry claim from an access token. The token is
// parsed unverified: the client never holds the signing key, and the backend
// re-checks the signature on every request anyway.
func TokenExpiry(accessToken string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parse access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("access token has no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}
