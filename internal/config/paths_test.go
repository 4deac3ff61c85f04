package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewPaths(t *testing.T) {
	home := os.Getenv("HOME")
	paths := NewPaths()

	if want := filepath.Join(home, ".config", "folio"); paths.ConfigDir != want {
		t.Errorf("ConfigDir = %q, want %q", paths.ConfigDir, want)
	}
	if want := filepath.Join(home, ".cache", "folio"); paths.CacheDir != want {
		t.Errorf("CacheDir = %q, want %q", paths.CacheDir, want)
	}
	if want := filepath.Join(home, ".config", "folio", "config.yaml"); paths.ConfigFile != want {
		t.Errorf("ConfigFile = %q, want %q", paths.ConfigFile, want)
	}
}

func TestPaths_CacheLocations(t *testing.T) {
	paths := NewPathsWithOverrides("/tmp/cfg", "/tmp/cache")

	if got, want := paths.CacheDB(), filepath.Join("/tmp/cache", "activity.db"); got != want {
		t.Errorf("CacheDB() = %q, want %q", got, want)
	}
	if got, want := paths.EntriesDir(), filepath.Join("/tmp/cache", "entries"); got != want {
		t.Errorf("EntriesDir() = %q, want %q", got, want)
	}
	if got, want := paths.ConfigFile, filepath.Join("/tmp/cfg", "config.yaml"); got != want {
		t.Errorf("ConfigFile = %q, want %q", got, want)
	}
}
