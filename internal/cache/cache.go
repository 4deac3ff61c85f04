package cache

import (
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

const entryExt = ".json"

// FileStore keeps one JSON file per key in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, pkgerrors.Wrapf(err, "create cache directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the entries.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+entryExt)
}

// Get returns the stored bytes for key, or ErrMiss.
func (f *FileStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMiss
		}
		return nil, pkgerrors.Wrapf(err, "read cache entry %s", key)
	}
	return data, nil
}

// Put writes value via a temp file and rename so readers never see a partial entry.
func (f *FileStore) Put(key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".entry-*")
	if err != nil {
		return pkgerrors.Wrap(err, "create temp cache file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return pkgerrors.Wrapf(err, "write cache entry %s", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return pkgerrors.Wrapf(err, "close cache entry %s", key)
	}

	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return pkgerrors.Wrapf(err, "commit cache entry %s", key)
	}
	return nil
}

// Delete removes the entry for key.
// Returns nil even if it doesn't exist (idempotent operation).
func (f *FileStore) Delete(key string) error {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrapf(err, "remove cache entry %s", key)
	}
	return nil
}

// Keys returns all cached keys with the given prefix.
func (f *FileStore) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	keys := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != entryExt || strings.HasPrefix(name, ".") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, entryExt))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStore) Close() error {
	return nil
}
