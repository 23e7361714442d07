package backend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		s    *Session
		want bool
	}{
		{"nil session", nil, true},
		{"zero expiry never expires", &Session{}, false},
		{"future expiry", &Session{ExpiresAt: now.Add(time.Hour)}, false},
		{"exactly now", &Session{ExpiresAt: now}, true},
		{"past expiry", &Session{ExpiresAt: now.Add(-time.Second)}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.s.Expired(now))
		})
	}
}
