package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pogibrader/noted/internal/common"
)

func setupStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	db, err := InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStorage(db)
}

func TestSQLiteStorage_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := setupStorage(t)

	require.NoError(t, s.Set(ctx, "k", []byte("v1")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// upsert
	require.NoError(t, s.Set(ctx, "k", []byte("v2")))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.Remove(ctx, "k"))
	_, err = s.Get(ctx, "k")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_GetMissing(t *testing.T) {
	s := setupStorage(t)
	_, err := s.Get(context.Background(), "absent")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_RemoveMissingIsNoOp(t *testing.T) {
	s := setupStorage(t)
	require.NoError(t, s.Remove(context.Background(), "absent"))
}

func TestSQLiteStorage_GetOrSet(t *testing.T) {
	ctx := context.Background()
	s := setupStorage(t)

	v, err := s.GetOrSet(ctx, "secret", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), v)

	// second call must keep the stored value
	v, err = s.GetOrSet(ctx, "secret", []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), v)

	got, err := s.Get(ctx, "secret")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

func TestStore_OverSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	st := NewStore(setupStorage(t))

	require.NoError(t, st.Save(ctx, nil)) // clear on empty store is fine

	_, err := st.Load(ctx)
	require.ErrorIs(t, err, common.ErrNoSession)
}
