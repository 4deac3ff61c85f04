package cache

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	createEntriesSQL = `
CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

	selectEntrySQL = `SELECT value FROM entries WHERE key = ?`

	upsertEntrySQL = `
INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	deleteEntrySQL = `DELETE FROM entries WHERE key = ?`

	selectKeysSQL = `SELECT key FROM entries WHERE key LIKE ? ESCAPE '\' ORDER BY key`
)

// SQLiteStore is a Store backed by a single sqlite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path with WAL journaling.
func OpenSQLite(path string) (*SQLiteStore, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "create cache directory")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open sqlite cache")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrap(err, "ping sqlite cache")
	}
	if _, err := db.Exec(createEntriesSQL); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrap(err, "create entries table")
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(selectEntrySQL, key).Scan(&value)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrMiss
		}
		return nil, pkgerrors.Wrapf(err, "select cache entry %s", key)
	}
	return value, nil
}

func (s *SQLiteStore) Put(key string, value []byte) error {
	if _, err := s.db.Exec(upsertEntrySQL, key, value, time.Now().UnixMilli()); err != nil {
		return pkgerrors.Wrapf(err, "upsert cache entry %s", key)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(deleteEntrySQL, key); err != nil {
		return pkgerrors.Wrapf(err, "delete cache entry %s", key)
	}
	return nil
}

func (s *SQLiteStore) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Query(selectKeysSQL, escapeLike(prefix)+"%")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list cache keys")
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, pkgerrors.Wrap(err, "scan cache key")
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// escapeLike escapes LIKE wildcards; category keys contain underscores.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
