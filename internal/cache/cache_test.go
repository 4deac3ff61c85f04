package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HartBrook/folio/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactories lets every backend run the same contract tests.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"file": func() Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "entries"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func() Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "activity.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			_, err := s.Get("octocat_github_prs")
			assert.ErrorIs(t, err, ErrMiss)

			require.NoError(t, s.Put("octocat_github_prs", []byte(`one`)))
			require.NoError(t, s.Put("octocat_github_prs", []byte(`two`)))
			require.NoError(t, s.Put("octocat_github_commits", []byte(`three`)))
			require.NoError(t, s.Put("octocatx_github_prs", []byte(`four`)))
			require.NoError(t, s.Put("hubot_github_prs", []byte(`five`)))

			got, err := s.Get("octocat_github_prs")
			require.NoError(t, err)
			assert.Equal(t, "two", string(got))

			keys, err := s.Keys("octocat_")
			require.NoError(t, err)
			assert.Equal(t, []string{"octocat_github_commits", "octocat_github_prs"}, keys)

			all, err := s.Keys("")
			require.NoError(t, err)
			assert.Len(t, all, 4)

			require.NoError(t, s.Delete("octocat_github_prs"))
			require.NoError(t, s.Delete("octocat_github_prs"), "delete is idempotent")
			_, err = s.Get("octocat_github_prs")
			assert.ErrorIs(t, err, ErrMiss)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "activity.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Put("octocat_organizations", []byte(`[]`)))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("octocat_organizations")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestSQLiteStore_KeysEscapesWildcards(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "activity.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("a_org_repos", []byte(`1`)))
	require.NoError(t, s.Put("abc", []byte(`2`)))

	keys, err := s.Keys("a_")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_org_repos"}, keys)
}

func TestFileStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put("octocat_github_stats", []byte(`{}`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	keys, err := s.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"octocat_github_stats"}, keys)
	assert.Equal(t, dir, s.Dir())
}

func TestOpen(t *testing.T) {
	tempDir := t.TempDir()
	paths := config.NewPathsWithOverrides(tempDir, tempDir)
	log := zerolog.Nop()

	mem := Open(config.BackendMemory, paths, log)
	assert.IsType(t, &MemoryStore{}, mem)

	file := Open(config.BackendFile, paths, log)
	require.IsType(t, &FileStore{}, file)
	assert.DirExists(t, paths.EntriesDir())

	db := Open(config.BackendSQLite, paths, log)
	require.IsType(t, &SQLiteStore{}, db)
	defer db.Close()
	assert.FileExists(t, paths.CacheDB())

	assert.Nil(t, Open("redis", paths, log))
}

func TestOpen_UnwritableDirDegradesToNil(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not dir"), 0644))

	// cache dir sits below a regular file, so it can never be created
	paths := config.NewPathsWithOverrides(tempDir, filepath.Join(blocker, "cache"))

	assert.Nil(t, Open(config.BackendFile, paths, zerolog.Nop()))
	assert.Nil(t, Open(config.BackendSQLite, paths, zerolog.Nop()))
}

func TestClearAccount(t *testing.T) {
	s := NewMemoryStore()
	for _, c := range Categories {
		require.NoError(t, s.Put(Key("octocat", c), []byte(`1`)))
	}
	require.NoError(t, s.Put(Key("hubot", CategoryPRs), []byte(`1`)))

	n, err := ClearAccount(s, "Octocat")
	require.NoError(t, err)
	assert.Equal(t, len(Categories), n)

	keys, err := s.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"hubot_github_prs"}, keys)

	n, err = ClearAccount(nil, "octocat")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEntryIsStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		age       time.Duration
		ttl       time.Duration
		wantStale bool
	}{
		{"fresh entry", 10 * time.Minute, time.Hour, false},
		{"one millisecond before TTL", time.Hour - time.Millisecond, time.Hour, false},
		{"exactly at TTL", time.Hour, time.Hour, true},
		{"stale entry", 2 * time.Hour, time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{StoredAt: now.Add(-tt.age).UnixMilli()}
			assert.Equal(t, tt.wantStale, e.IsStale(now, tt.ttl))
		})
	}
}

func TestEntryAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{3 * time.Hour, "3 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{72 * time.Hour, "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			e := &Entry{StoredAt: now.Add(-tt.age).UnixMilli()}
			assert.Equal(t, tt.want, e.Age(now))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "octocat_github_prs", Key("Octocat", CategoryPRs))

	account, c, ok := SplitKey("octocat_org_repos")
	require.True(t, ok)
	assert.Equal(t, "octocat", account)
	assert.Equal(t, CategoryOrgRepos, c)

	_, _, ok = SplitKey("nounderscore")
	assert.False(t, ok)
}
