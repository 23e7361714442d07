// Package posts is the client-side repository for a user's notes: remote
// CRUD through the backend row store with an in-memory list reconciled
// against every confirmed mutation.
package posts

import (
	"time"

	"github.com/pogibrader/noted/internal/media"
)

// Post is a user-owned note. ID and CreatedAt are server-assigned.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MediaURL    string    `json:"media_url,omitempty"`
	MediaType   string    `json:"media_type,omitempty"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Draft is the user-entered part of a new note.
type Draft struct {
	Title       string
	Description string
}

// Attachment points at a locally picked file that has not been uploaded yet.
// It exists only between selection and submission.
type Attachment struct {
	LocalPath string
	Kind      media.Kind
}
