package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/pogibrader/noted/internal/common"
	"github.com/pogibrader/noted/internal/dbx"
)

// SQLiteStorage implements Storage over a kv table in the local database.
// Single-statement operations run on the db handle; GetOrSet runs inside a
// transaction so racing processes settle on one stored value.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// InitDatabase opens the local SQLite database at dsn and ensures the kv
// schema exists.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv schema: %w", err)
	}
	return db, nil
}

func (s *SQLiteStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return getValue(ctx, s.db, key)
}

func (s *SQLiteStorage) Set(ctx context.Context, key string, value []byte) error {
	return setValue(ctx, s.db, key, value)
}

func (s *SQLiteStorage) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to remove kv[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) GetOrSet(ctx context.Context, key string, value []byte) ([]byte, error) {
	out := value
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		existing, err := getValue(ctx, tx, key)
		if err == nil {
			out = existing
			return nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		return setValue(ctx, tx, key, value)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// getValue and setValue take dbx.DBTX so they work both on the database
// handle and inside a transaction.

func getValue(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: kv[%s]", common.ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, nil
}

func setValue(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}
