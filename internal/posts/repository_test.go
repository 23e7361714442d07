package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pogibrader/noted/internal/common"
	"github.com/pogibrader/noted/internal/logging"
	"github.com/pogibrader/noted/internal/media"
)

// fakeRows is an in-memory backend.RowStore speaking the same JSON-array
// protocol as the real drivers.
type fakeRows struct {
	rows   []map[string]any
	nextID int
	clock  time.Time

	selectErr, insertErr, updateErr, deleteErr error

	selects, inserts, updates, deletes int
}

func newFakeRows() *fakeRows {
	return &fakeRows{clock: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeRows) tick() string {
	f.clock = f.clock.Add(time.Second)
	return f.clock.Format(time.RFC3339)
}

func (f *fakeRows) Select(ctx context.Context, table, eqCol, eqVal, orderCol string, desc bool) ([]byte, error) {
	f.selects++
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	var out []map[string]any
	for _, r := range f.rows {
		if r[eqCol] == eqVal {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := out[i][orderCol].(string)
		b, _ := out[j][orderCol].(string)
		if desc {
			return a > b
		}
		return a < b
	})
	if out == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(out)
}

func (f *fakeRows) Insert(ctx context.Context, table string, row any) ([]byte, error) {
	f.inserts++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	raw, _ := json.Marshal(row)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)

	f.nextID++
	m["id"] = fmt.Sprintf("p%d", f.nextID)
	m["created_at"] = f.tick()
	f.rows = append(f.rows, m)
	return json.Marshal([]map[string]any{m})
}

func (f *fakeRows) Update(ctx context.Context, table, idCol, idVal string, changes any) ([]byte, error) {
	f.updates++
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	raw, _ := json.Marshal(changes)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)

	for _, r := range f.rows {
		if r[idCol] == idVal {
			for k, v := range m {
				r[k] = v
			}
			return json.Marshal([]map[string]any{r})
		}
	}
	return []byte("[]"), nil
}

func (f *fakeRows) Delete(ctx context.Context, table, idCol, idVal string) error {
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, r := range f.rows {
		if r[idCol] == idVal {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeUploader struct {
	err     error
	uploads int
}

func (f *fakeUploader) Upload(ctx context.Context, localPath string, kind media.Kind) (*media.Attachment, error) {
	f.uploads++
	if f.err != nil {
		return nil, f.err
	}
	return &media.Attachment{URL: "https://cdn.example.com/post-media/uploads/1.jpg", Kind: kind}, nil
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newRepo(rows *fakeRows, up *fakeUploader) *Repository {
	return NewRepository(rows, up, "posts", discardLogger())
}

func TestCreate_NewNoteAtIndexZero(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	repo := newRepo(rows, &fakeUploader{})

	for i := 1; i <= 3; i++ {
		_, err := repo.Create(ctx, "u1", Draft{Title: fmt.Sprintf("t%d", i), Description: "d"}, nil)
		require.NoError(t, err)

		list := repo.Posts()
		require.Len(t, list, i)
		assert.Equal(t, fmt.Sprintf("t%d", i), list[0].Title, "newest note must be first")
	}
}

func TestCreate_ValidationBeforeAnyNetworkCall(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	up := &fakeUploader{}
	repo := newRepo(rows, up)

	_, err := repo.Create(ctx, "u1", Draft{Title: "", Description: "d"}, &Attachment{LocalPath: "x.jpg", Kind: media.KindImage})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)

	_, err = repo.Create(ctx, "u1", Draft{Title: "t", Description: ""}, nil)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "description", ve.Field)

	assert.Zero(t, rows.inserts, "no insert before validation passes")
	assert.Zero(t, up.uploads, "no upload before validation passes")
}

func TestCreate_WithAttachment(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	repo := newRepo(rows, &fakeUploader{})

	p, err := repo.Create(ctx, "u1", Draft{Title: "t", Description: "d"},
		&Attachment{LocalPath: "pic.jpg", Kind: media.KindImage})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/post-media/uploads/1.jpg", p.MediaURL)
	assert.Equal(t, "image", p.MediaType)
	assert.Equal(t, "u1", p.UserID)
	assert.NotEmpty(t, p.ID, "server-assigned id expected")
}

func TestCreate_UploadFailurePreventsInsert(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	up := &fakeUploader{err: &media.UploadError{Op: "store object", Err: common.ErrUnavailable}}
	repo := newRepo(rows, up)

	_, err := repo.Create(ctx, "u1", Draft{Title: "t", Description: "d"},
		&Attachment{LocalPath: "pic.jpg", Kind: media.KindImage})

	var ue *media.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, rows.inserts, "note must not be written after a failed upload")
	assert.Empty(t, repo.Posts())
}

func TestCreate_InsertFailureAfterUpload(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	rows.insertErr = common.ErrUnavailable
	up := &fakeUploader{}
	repo := newRepo(rows, up)

	_, err := repo.Create(ctx, "u1", Draft{Title: "t", Description: "d"},
		&Attachment{LocalPath: "pic.jpg", Kind: media.KindImage})

	var re *RepositoryError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 1, up.uploads, "upload happened; the stored object is orphaned")
	assert.Empty(t, repo.Posts(), "local list unchanged on failed insert")
}

func TestList_OrderedByCreationDescending(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	repo := newRepo(rows, &fakeUploader{})

	for i := 1; i <= 3; i++ {
		_, err := repo.Create(ctx, "u1", Draft{Title: fmt.Sprintf("t%d", i), Description: "d"}, nil)
		require.NoError(t, err)
	}
	// another user's note must not show up
	_, err := repo.Create(ctx, "u2", Draft{Title: "other", Description: "d"}, nil)
	require.NoError(t, err)

	list, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"t3", "t2", "t1"}, []string{list[0].Title, list[1].Title, list[2].Title})
}

func TestList_FailureLeavesPriorStateIntact(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	repo := newRepo(rows, &fakeUploader{})

	_, err := repo.Create(ctx, "u1", Draft{Title: "t1", Description: "d"}, nil)
	require.NoError(t, err)

	rows.selectErr = common.ErrUnavailable
	_, err = repo.List(ctx, "u1")
	var re *RepositoryError
	require.ErrorAs(t, err, &re)

	require.Len(t, repo.Posts(), 1, "prior list survives a failed fetch")
	assert.Equal(t, "t1", repo.Posts()[0].Title)
}

func TestUpdate_PreservesMediaWithoutNewAttachment(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	repo := newRepo(rows, &fakeUploader{})

	p, err := repo.Create(ctx, "u1", Draft{Title: "t", Description: "d"},
		&Attachment{LocalPath: "pic.jpg", Kind: media.KindImage})
	require.NoError(t, err)

	p.Title = "t-edited"
	updated, err := repo.Update(ctx, *p, nil)
	require.NoError(t, err)

	assert.Equal(t, "t-edited", updated.Title)
	assert.Equal(t, p.MediaURL, updated.MediaURL, "media_url must survive an edit without attachment")
	assert.Equal(t, p.MediaType, updated.MediaType)

	local := repo.Posts()
	require.Len(t, local, 1)
	assert.Equal(t, "t-edited", local[0].Title)
}

func TestUpdate_ReplacesByID(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	repo := newRepo(rows, &fakeUploader{})

	p1, err := repo.Create(ctx, "u1", Draft{Title: "t1", Description: "d"}, nil)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "u1", Draft{Title: "t2", Description: "d"}, nil)
	require.NoError(t, err)

	p1.Description = "edited"
	_, err = repo.Update(ctx, *p1, nil)
	require.NoError(t, err)

	list := repo.Posts()
	require.Len(t, list, 2)
	// ordering by creation time is unaffected by the edit
	assert.Equal(t, "t2", list[0].Title)
	assert.Equal(t, "edited", list[1].Description)
}

func TestDelete_RemovesAfterRemoteConfirmation(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	repo := newRepo(rows, &fakeUploader{})

	p, err := repo.Create(ctx, "u1", Draft{Title: "t", Description: "d"}, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.Empty(t, repo.Posts())

	list, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDelete_NotOptimistic(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	repo := newRepo(rows, &fakeUploader{})

	p, err := repo.Create(ctx, "u1", Draft{Title: "t", Description: "d"}, nil)
	require.NoError(t, err)

	rows.deleteErr = common.ErrUnavailable
	err = repo.Delete(ctx, p.ID)
	var re *RepositoryError
	require.ErrorAs(t, err, &re)

	require.Len(t, repo.Posts(), 1, "failed remote delete must leave local list unchanged")
}

func TestMutations_RejectedWhileInFlight(t *testing.T) {
	ctx := context.Background()
	rows := newFakeRows()
	repo := newRepo(rows, &fakeUploader{})

	p, err := repo.Create(ctx, "u1", Draft{Title: "t", Description: "d"}, nil)
	require.NoError(t, err)

	// simulate an in-flight update on the same note
	require.NoError(t, repo.acquire(p.ID))
	defer repo.release(p.ID)

	_, err = repo.Update(ctx, *p, nil)
	require.ErrorIs(t, err, ErrBusy)

	err = repo.Delete(ctx, p.ID)
	require.ErrorIs(t, err, ErrBusy)

	// a second create is also serialized
	require.NoError(t, repo.acquire(createToken))
	defer repo.release(createToken)
	_, err = repo.Create(ctx, "u1", Draft{Title: "t2", Description: "d"}, nil)
	require.ErrorIs(t, err, ErrBusy)
}
