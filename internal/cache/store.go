// Package cache persists GitHub activity between refreshes.
package cache

import (
	stderrors "errors"
	"strings"

	"github.com/HartBrook/folio/internal/config"
	"github.com/rs/zerolog"
)

// ErrMiss is returned by a Store when no value exists for a key.
var ErrMiss = stderrors.New("cache: miss")

// Store is a persistent key/value store backing TimedCache.
type Store interface {
	// Get returns the value for key, or ErrMiss.
	Get(key string) ([]byte, error)
	// Put overwrites the value for key.
	Put(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns all keys starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
	Close() error
}

// Open returns the store for the named backend.
// It returns nil when the backend cannot be opened; TimedCache treats a nil
// store as always-miss, so callers never need to fail on it.
func Open(backend string, paths *config.Paths, log zerolog.Logger) Store {
	var (
		store Store
		err   error
	)

	switch backend {
	case config.BackendMemory:
		return NewMemoryStore()
	case config.BackendFile:
		store, err = NewFileStore(paths.EntriesDir())
	case config.BackendSQLite, "":
		store, err = OpenSQLite(paths.CacheDB())
	default:
		log.Warn().Str("backend", backend).Msg("unknown cache backend, caching disabled")
		return nil
	}

	if err != nil {
		log.Warn().Err(err).Str("backend", backend).Msg("cache unavailable, caching disabled")
		return nil
	}
	return store
}

// ClearAccount deletes every entry stored for account and returns how many were removed.
func ClearAccount(store Store, account string) (int, error) {
	if store == nil {
		return 0, nil
	}

	keys, err := store.Keys(AccountPrefix(account))
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := store.Delete(k); err != nil {
			return 0, err
		}
	}
	return len(keys), nil
}

// AccountPrefix returns the key prefix shared by all of an account's entries.
// An empty account matches every key.
func AccountPrefix(account string) string {
	if account == "" {
		return ""
	}
	return strings.ToLower(account) + "_"
}
