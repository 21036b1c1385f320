package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const upsertObject = `
	INSERT INTO objects (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

// SQLiteStore keeps objects in the objects table.
type SQLiteStore struct {
	db  *DB
	now func() time.Time
}

// NewSQLiteStore creates a store over an open, migrated database.
func NewSQLiteStore(db *DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Load decodes the value at key into dst.
func (s *SQLiteStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	var value string
	err := s.db.Conn().QueryRowContext(ctx, "SELECT value FROM objects WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, storeErr("load", key, err)
	}
	if err := decode(key, []byte(value), dst); err != nil {
		return false, err
	}
	return true, nil
}

// Save upserts the value at key.
func (s *SQLiteStore) Save(ctx context.Context, key string, v any) error {
	data, err := encode(key, v)
	if err != nil {
		return err
	}

	_, err = s.db.Conn().ExecContext(ctx, upsertObject, key, string(data), s.now().UTC())
	if err != nil {
		return storeErr("save", key, err)
	}
	return nil
}

// Delete removes key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Conn().ExecContext(ctx, "DELETE FROM objects WHERE key = ?", key); err != nil {
		return storeErr("delete", key, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
