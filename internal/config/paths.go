// Package config handles folio configuration.
package config

import (
	"os"
	"path/filepath"
)

// Paths provides all folio-related filesystem paths.
type Paths struct {
	ConfigDir  string // ~/.config/folio
	CacheDir   string // ~/.cache/folio
	ConfigFile string // ~/.config/folio/config.yaml
}

// NewPaths creates Paths using ~/.config and ~/.cache directories.
// We use these paths explicitly for cross-platform consistency rather than
// platform-specific defaults (like ~/Library/Application Support on macOS).
func NewPaths() *Paths {
	home := os.Getenv("HOME")
	configDir := filepath.Join(home, ".config", "folio")
	cacheDir := filepath.Join(home, ".cache", "folio")

	return NewPathsWithOverrides(configDir, cacheDir)
}

// NewPathsWithOverrides allows overriding directories for testing.
func NewPathsWithOverrides(configDir, cacheDir string) *Paths {
	return &Paths{
		ConfigDir:  configDir,
		CacheDir:   cacheDir,
		ConfigFile: filepath.Join(configDir, "config.yaml"),
	}
}

// CacheDB returns the path of the sqlite cache database.
func (p *Paths) CacheDB() string {
	return filepath.Join(p.CacheDir, "activity.db")
}

// EntriesDir returns the directory used by the file cache backend.
func (p *Paths) EntriesDir() string {
	return filepath.Join(p.CacheDir, "entries")
}
