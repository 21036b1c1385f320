// Package storage persists whole JSON-encoded objects under string keys.
//
// The collection, the deck list and the settings are each stored as one
// value. Backends are SQLite (default), Redis and an in-memory map.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Keys of the persisted objects.
const (
	KeyCollection = "collection"
	KeyDecks      = "decks"
	KeySettings   = "settings"
)

// ErrStore wraps every persistence failure returned by a backend.
var ErrStore = errors.New("storage failure")

// ObjectStore loads and saves whole objects by key.
type ObjectStore interface {
	// Load decodes the value stored at key into dst. It reports false when
	// the key is absent, leaving dst untouched.
	Load(ctx context.Context, key string, dst any) (bool, error)
	// Save replaces the value stored at key.
	Save(ctx context.Context, key string, v any) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// BatchSaver saves several objects at once: either all of them are
// replaced or none is.
type BatchSaver interface {
	SaveAll(ctx context.Context, values map[string]any) error
}

// SaveAll saves values through store's BatchSaver when it has one, and key by
// key in key order otherwise. Without a BatchSaver only encoding failures are
// caught before the first write.
func SaveAll(ctx context.Context, store ObjectStore, values map[string]any) error {
	if batch, ok := store.(BatchSaver); ok {
		return batch.SaveAll(ctx, values)
	}
	if _, err := encodeAll(values); err != nil {
		return err
	}
	for _, key := range sortedKeys(values) {
		if err := store.Save(ctx, key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

// Backend is an ObjectStore holding resources that must be released.
type Backend interface {
	ObjectStore
	Close() error
}

// Driver names accepted by OpenBackend.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// BackendOptions selects and configures a backend.
type BackendOptions struct {
	Driver   string
	Path     string
	RedisURL string
	// Namespace prefixes Redis keys.
	Namespace string
}

// OpenBackend opens the backend named by opts.Driver.
func OpenBackend(ctx context.Context, opts BackendOptions) (Backend, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverSQLite:
		db, err := Open(DefaultConfig(opts.Path))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return NewSQLiteStore(db), nil
	case DriverRedis:
		return NewRedisStore(ctx, opts.RedisURL, opts.Namespace)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

func storeErr(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrStore, op, key, err)
}

func encode(key string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, storeErr("encode", key, err)
	}
	return data, nil
}

func decode(key string, data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return storeErr("decode", key, err)
	}
	return nil
}

func encodeAll(values map[string]any) (map[string][]byte, error) {
	encoded := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := encode(key, v)
		if err != nil {
			return nil, err
		}
		encoded[key] = data
	}
	return encoded, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
