package activity

import (
	"context"
	"sync"
	"time"

	"github.com/HartBrook/folio/internal/cache"
	"github.com/HartBrook/folio/internal/errors"
	"github.com/HartBrook/folio/internal/github"
)

// fakeSource is an in-memory Source that counts every outbound call.
type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int

	credential   bool
	personal     map[string][]github.Repository
	orgs         []github.Organization
	orgRepos     map[string][]github.Repository
	contributors map[string][]string // keyed by "org/repo"
	prs          int
	commits      int
	calendar     []github.ContributionDay

	// errs fails a method (or "contributors:org/repo") with the given error.
	errs map[string]error
	// gates blocks ListRepositories for an account until the channel is closed.
	gates map[string]chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls:        map[string]int{},
		personal:     map[string][]github.Repository{},
		orgRepos:     map[string][]github.Repository{},
		contributors: map[string][]string{},
		errs:         map[string]error{},
		gates:        map[string]chan struct{}{},
	}
}

func (f *fakeSource) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.errs[method]
}

func (f *fakeSource) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeSource) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeSource) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = map[string]int{}
}

func (f *fakeSource) ListRepositories(ctx context.Context, owner string, scope github.Scope) ([]github.Repository, error) {
	if scope == github.ScopeOrg {
		if err := f.record("ListRepositories:" + owner); err != nil {
			return nil, err
		}
		return f.orgRepos[owner], nil
	}

	f.mu.Lock()
	gate := f.gates[owner]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	if err := f.record("ListRepositories"); err != nil {
		return nil, err
	}
	return f.personal[owner], nil
}

func (f *fakeSource) ListOrganizations(ctx context.Context, account string) ([]github.Organization, error) {
	if err := f.record("ListOrganizations"); err != nil {
		return nil, err
	}
	return f.orgs, nil
}

func (f *fakeSource) SearchPullRequestCount(ctx context.Context, account string) (int, error) {
	if err := f.record("SearchPullRequestCount"); err != nil {
		return 0, err
	}
	return f.prs, nil
}

func (f *fakeSource) SearchCommitCount(ctx context.Context, account string) (int, error) {
	if err := f.record("SearchCommitCount"); err != nil {
		return 0, err
	}
	return f.commits, nil
}

func (f *fakeSource) FetchContributionCalendar(ctx context.Context, account string) ([]github.ContributionDay, error) {
	if err := f.record("FetchContributionCalendar"); err != nil {
		return nil, err
	}
	return f.calendar, nil
}

func (f *fakeSource) ListContributors(ctx context.Context, owner, repo string) ([]string, error) {
	f.record("ListContributors")
	f.mu.Lock()
	err := f.errs["contributors:"+owner+"/"+repo]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.contributors[owner+"/"+repo], nil
}

func (f *fakeSource) HasCredential() bool {
	return f.credential
}

// testClock is a settable clock shared by the aggregator and its cache.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 5, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errRateLimited = errors.RateLimited("test", time.Time{})

var errNetwork = errors.NetworkError("test", nil)

// countingStore records how often each key is written.
type countingStore struct {
	*cache.MemoryStore

	mu   sync.Mutex
	puts map[string]int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: cache.NewMemoryStore(), puts: map[string]int{}}
}

func (s *countingStore) Put(key string, value []byte) error {
	s.mu.Lock()
	s.puts[key]++
	s.mu.Unlock()
	return s.MemoryStore.Put(key, value)
}

func (s *countingStore) writes(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts[key]
}
