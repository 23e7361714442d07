package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/pogibrader/noted/internal/backend"
	"github.com/pogibrader/noted/internal/logging"
	"github.com/pogibrader/noted/internal/media"
)

// createToken keys the in-flight guard for creations, which have no id yet.
const createToken = "\x00create"

// MediaUploader is the slice of the media helper the repository needs.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string, kind media.Kind) (*media.Attachment, error)
}

// Repository syncs a user's notes between the remote row store and a local
// in-memory list.
//
// Mutation contracts, preserved from the original client:
//   - Create and Update are optimistic: the local list changes as soon as
//     the remote call confirms, without a refetch.
//   - Delete is NOT optimistic: the local entry is removed only after the
//     remote delete confirms. A failed delete leaves the list untouched.
//
// Unlike the original, the list is re-sorted by creation time after every
// local mutation instead of trusting insertion order, and overlapping
// mutations on the same note are rejected with ErrBusy.
type Repository struct {
	rows     backend.RowStore
	uploader MediaUploader
	table    string
	log      logging.Logger

	mu       sync.Mutex
	list     []Post
	inflight map[string]struct{}
}

func NewRepository(rows backend.RowStore, uploader MediaUploader, table string, log logging.Logger) *Repository {
	return &Repository{
		rows:     rows,
		uploader: uploader,
		table:    table,
		log:      log,
		inflight: make(map[string]struct{}),
	}
}

// List fetches all notes of userID ordered by creation time descending and
// replaces the local list. On failure the prior local list stays intact.
func (r *Repository) List(ctx context.Context, userID string) ([]Post, error) {
	raw, err := r.rows.Select(ctx, r.table, "user_id", userID, "created_at", true)
	if err != nil {
		return nil, &RepositoryError{Op: "list", Err: err}
	}

	var fetched []Post
	if err := json.Unmarshal(raw, &fetched); err != nil {
		return nil, &RepositoryError{Op: "list", Err: fmt.Errorf("decode rows: %w", err)}
	}

	r.mu.Lock()
	r.list = fetched
	r.sortLocked()
	out := r.snapshotLocked()
	r.mu.Unlock()
	return out, nil
}

// Posts returns a snapshot of the local list.
func (r *Repository) Posts() []Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Create validates the draft, uploads the attachment if present, inserts
// the note for userID and adds the server-assigned row to the local list.
//
// A successful upload followed by a failed insert leaves an orphaned stored
// object. That is accepted and logged, not compensated.
func (r *Repository) Create(ctx context.Context, userID string, d Draft, att *Attachment) (*Post, error) {
	if err := validate(d.Title, d.Description); err != nil {
		return nil, err
	}
	if err := r.acquire(createToken); err != nil {
		return nil, err
	}
	defer r.release(createToken)

	row := map[string]any{
		"title":       d.Title,
		"description": d.Description,
		"user_id":     userID,
	}
	if att != nil {
		uploaded, err := r.uploader.Upload(ctx, att.LocalPath, att.Kind)
		if err != nil {
			return nil, err
		}
		row["media_url"] = uploaded.URL
		row["media_type"] = string(uploaded.Kind)
	}

	raw, err := r.rows.Insert(ctx, r.table, row)
	if err != nil {
		if att != nil {
			r.log.Warn(ctx, "insert failed after upload, stored object orphaned",
				"media_url", row["media_url"], "err", err)
		}
		return nil, &RepositoryError{Op: "create", Err: err}
	}

	created, err := firstRow(raw)
	if err != nil {
		return nil, &RepositoryError{Op: "create", Err: err}
	}

	r.mu.Lock()
	r.list = append([]Post{*created}, r.list...)
	r.sortLocked()
	r.mu.Unlock()
	return created, nil
}

// Update validates and writes the changed note, preserving the existing
// media fields when no new attachment is supplied, then replaces the local
// entry with the same id.
func (r *Repository) Update(ctx context.Context, p Post, att *Attachment) (*Post, error) {
	if err := validate(p.Title, p.Description); err != nil {
		return nil, err
	}
	if err := r.acquire(p.ID); err != nil {
		return nil, err
	}
	defer r.release(p.ID)

	changes := map[string]any{
		"title":       p.Title,
		"description": p.Description,
		"media_url":   p.MediaURL,
		"media_type":  p.MediaType,
	}
	if att != nil {
		uploaded, err := r.uploader.Upload(ctx, att.LocalPath, att.Kind)
		if err != nil {
			return nil, err
		}
		changes["media_url"] = uploaded.URL
		changes["media_type"] = string(uploaded.Kind)
	}

	raw, err := r.rows.Update(ctx, r.table, "id", p.ID, changes)
	if err != nil {
		if att != nil {
			r.log.Warn(ctx, "update failed after upload, stored object orphaned",
				"media_url", changes["media_url"], "err", err)
		}
		return nil, &RepositoryError{Op: "update", Err: err}
	}

	updated, err := firstRow(raw)
	if err != nil {
		return nil, &RepositoryError{Op: "update", Err: err}
	}

	r.mu.Lock()
	for i := range r.list {
		if r.list[i].ID == updated.ID {
			r.list[i] = *updated
			break
		}
	}
	r.sortLocked()
	r.mu.Unlock()
	return updated, nil
}

// Delete removes the note remotely, then drops the first local entry with
// the matching id. Local state changes only after remote confirmation.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.acquire(id); err != nil {
		return err
	}
	defer r.release(id)

	if err := r.rows.Delete(ctx, r.table, "id", id); err != nil {
		return &RepositoryError{Op: "delete", Err: err}
	}

	r.mu.Lock()
	for i := range r.list {
		if r.list[i].ID == id {
			r.list = append(r.list[:i], r.list[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	return nil
}

func (r *Repository) acquire(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[key]; busy {
		return fmt.Errorf("%w: %s", ErrBusy, key)
	}
	r.inflight[key] = struct{}{}
	return nil
}

func (r *Repository) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, key)
}

// sortLocked keeps the list in descending creation order. The original
// relied on prepend-plus-monotonic-timestamps; sorting makes the ordering
// explicit.
func (r *Repository) sortLocked() {
	sort.SliceStable(r.list, func(i, j int) bool {
		return r.list[i].CreatedAt.After(r.list[j].CreatedAt)
	})
}

func (r *Repository) snapshotLocked() []Post {
	out := make([]Post, len(r.list))
	copy(out, r.list)
	return out
}

func firstRow(raw []byte) (*Post, error) {
	var rows []Post
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no row returned")
	}
	return &rows[0], nil
}
