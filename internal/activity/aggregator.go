package activity

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/HartBrook/folio/internal/cache"
	"github.com/HartBrook/folio/internal/config"
	"github.com/HartBrook/folio/internal/errors"
	"github.com/HartBrook/folio/internal/github"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Source is the subset of the GitHub client the aggregator calls.
type Source interface {
	ListRepositories(ctx context.Context, owner string, scope github.Scope) ([]github.Repository, error)
	ListOrganizations(ctx context.Context, account string) ([]github.Organization, error)
	SearchPullRequestCount(ctx context.Context, account string) (int, error)
	SearchCommitCount(ctx context.Context, account string) (int, error)
	FetchContributionCalendar(ctx context.Context, account string) ([]github.ContributionDay, error)
	ListContributors(ctx context.Context, owner, repo string) ([]string, error)
	HasCredential() bool
}

type aggregatorOptions struct {
	trustedOrgs        []string
	personalLimit      int
	orgLimit           int
	contributorWorkers int
	force              bool
	fallback           *FallbackGenerator
	now                func() time.Time
	log                zerolog.Logger
}

// Option configures an Aggregator.
type Option func(*aggregatorOptions)

// WithTrustedOrgs lists organizations whose repositories all count as the account's.
func WithTrustedOrgs(orgs []string) Option {
	return func(o *aggregatorOptions) { o.trustedOrgs = orgs }
}

// WithLimits sets how many personal and organization repositories a snapshot keeps.
func WithLimits(personal, org int) Option {
	return func(o *aggregatorOptions) {
		o.personalLimit = personal
		o.orgLimit = org
	}
}

// WithContributorWorkers bounds concurrent contributor checks.
func WithContributorWorkers(n int) Option {
	return func(o *aggregatorOptions) { o.contributorWorkers = n }
}

// WithForceRefresh skips cache reads; successful results are still written.
func WithForceRefresh(force bool) Option {
	return func(o *aggregatorOptions) { o.force = force }
}

// WithFallback sets the synthetic calendar generator.
func WithFallback(g *FallbackGenerator) Option {
	return func(o *aggregatorOptions) { o.fallback = g }
}

// WithClock sets the time source for cache expiry and the calendar window.
func WithClock(now func() time.Time) Option {
	return func(o *aggregatorOptions) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *aggregatorOptions) { o.log = log }
}

// Aggregator builds activity snapshots from a Source and a cache store.
// It is safe for concurrent use; overlapping refreshes of one account share
// a single cycle.
type Aggregator struct {
	source  Source
	store   cache.Store
	opts    aggregatorOptions
	flights singleflight.Group
}

// NewAggregator creates an Aggregator. A nil store disables caching.
func NewAggregator(source Source, store cache.Store, opts ...Option) *Aggregator {
	o := aggregatorOptions{
		personalLimit:      config.DefaultPersonalRepos,
		orgLimit:           config.DefaultOrgRepos,
		contributorWorkers: config.DefaultWorkers,
		now:                time.Now,
		log:                zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fallback == nil {
		o.fallback = NewFallbackGenerator(WithFallbackClock(o.now))
	}
	if o.contributorWorkers < 1 {
		o.contributorWorkers = 1
	}
	return &Aggregator{source: source, store: store, opts: o}
}

// Refresh runs one cycle and commits it. The error is non-nil only when the
// refresh could not proceed at all; the result is still usable then.
func (a *Aggregator) Refresh(ctx context.Context, account string) (*Result, error) {
	cycle := a.Run(ctx, account)
	cycle.Commit()
	return cycle.Result, cycle.Err
}

// Run fetches and merges a snapshot without writing it to the cache.
// Call Commit on the returned cycle to persist it. Callers that overlap on
// the same account get the same cycle, so it is fetched and committed once.
// A caller whose ctx ends first stops waiting and gets an unavailable cycle;
// the shared cycle keeps running for the others.
func (a *Aggregator) Run(ctx context.Context, account string) *Cycle {
	account = strings.TrimSpace(account)

	ch := a.flights.DoChan(strings.ToLower(account), func() (interface{}, error) {
		return a.run(context.WithoutCancel(ctx), account), nil
	})

	select {
	case res := <-ch:
		return res.Val.(*Cycle)
	case <-ctx.Done():
		return a.abandoned(ctx, account)
	}
}

func (a *Aggregator) newCycle(account string) *Cycle {
	c := &Cycle{
		agg:     a,
		account: account,
		id:      uuid.New().String(),
	}
	c.log = a.opts.log.With().Str("refresh_id", c.id).Str("account", account).Logger()
	return c
}

func (a *Aggregator) run(ctx context.Context, account string) *Cycle {
	c := a.newCycle(account)

	c.enter(StateCheckingCache)
	if result, ok := a.fromCache(account); ok {
		result.RefreshID = c.id
		c.Result = result
		c.done = true
		c.enter(StateDone)
		refreshesTotal.WithLabelValues(string(result.Origin)).Inc()
		return c
	}

	c.enter(StateFetching)
	f := a.fetch(ctx, account, c.log)

	c.enter(StateMerging)
	c.Result, c.Err = a.merge(account, f)
	c.Result.RefreshID = c.id
	c.pending = a.persistable(account, f, c.Result)

	if len(c.Result.Degraded) > 0 {
		c.enter(StateDegraded)
		for _, d := range c.Result.Degraded {
			c.log.Warn().Str("category", string(d)).Msg("category degraded")
		}
	}
	refreshesTotal.WithLabelValues(string(c.Result.Origin)).Inc()
	return c
}

// abandoned is the finished, write-free cycle handed to a caller that
// stopped waiting.
func (a *Aggregator) abandoned(ctx context.Context, account string) *Cycle {
	c := a.newCycle(account)
	c.Result = &Result{
		Account:       account,
		Activities:    a.opts.fallback.Generate(DefaultDays),
		PersonalRepos: []github.Repository{},
		OrgRepos:      []github.Repository{},
		Organizations: []github.Organization{},
		Origin:        OriginSynthetic,
		Unavailable:   true,
		RefreshID:     c.id,
		FetchedAt:     a.opts.now(),
	}
	c.Err = errors.DataUnavailable(account, errors.NetworkError("refresh", ctx.Err()))
	c.done = true
	c.enter(StateDone)
	return c
}

func (a *Aggregator) cacheOpts() []cache.Option {
	return []cache.Option{cache.WithClock(a.opts.now), cache.WithLogger(a.opts.log)}
}

// fromCache assembles a snapshot when personal repos, org repos, organizations,
// stats and the calendar are all cached.
// Without a credential the calendar is always synthetic, so it never applies.
func (a *Aggregator) fromCache(account string) (*Result, bool) {
	if a.opts.force || a.store == nil || !a.source.HasCredential() {
		return nil, false
	}

	opts := a.cacheOpts()
	personal, ok := cache.NewTimed[[]github.Repository](a.store, opts...).Get(cache.Key(account, cache.CategoryPersonalRepos))
	if !ok {
		return nil, false
	}
	orgRepos, ok := cache.NewTimed[[]github.Repository](a.store, opts...).Get(cache.Key(account, cache.CategoryOrgRepos))
	if !ok {
		return nil, false
	}
	orgs, ok := cache.NewTimed[[]github.Organization](a.store, opts...).Get(cache.Key(account, cache.CategoryOrganizations))
	if !ok {
		return nil, false
	}
	stats, ok := cache.NewTimed[Stats](a.store, opts...).Get(cache.Key(account, cache.CategoryStats))
	if !ok {
		return nil, false
	}
	days, ok := cache.NewTimed[[]github.ContributionDay](a.store, opts...).Get(cache.Key(account, cache.CategoryActivities))
	if !ok {
		return nil, false
	}

	return &Result{
		Account:       account,
		Activities:    normalizeCalendar(days, a.opts.now(), DefaultDays),
		PersonalRepos: trim(personal, a.opts.personalLimit),
		OrgRepos:      trim(orgRepos, a.opts.orgLimit),
		Organizations: orgs,
		Stats:         stats,
		Origin:        OriginCached,
		FetchedAt:     a.opts.now(),
	}, true
}

// slot holds one category's outcome.
type slot[T any] struct {
	value    T
	err      error
	cached   bool
	degraded bool
}

func (s slot[T]) ok() bool {
	return s.err == nil && !s.degraded
}

// load reads category from the cache or calls fetch on a miss.
func load[T any](a *Aggregator, account string, c cache.Category, fetch func() (T, error)) slot[T] {
	if !a.opts.force {
		if v, ok := cache.NewTimed[T](a.store, a.cacheOpts()...).Get(cache.Key(account, c)); ok {
			return slot[T]{value: v, cached: true}
		}
	}
	v, err := fetch()
	return slot[T]{value: v, err: err}
}

type fetched struct {
	personal  slot[[]github.Repository]
	orgs      slot[[]github.Organization]
	orgRepos  slot[[]github.Repository]
	prs       slot[int]
	commits   slot[int]
	calendar  slot[[]github.ContributionDay]
	synthetic bool
}

// fetch issues every category independently. Only organization repositories
// wait, for the organizations they belong to.
func (a *Aggregator) fetch(ctx context.Context, account string, log zerolog.Logger) *fetched {
	f := &fetched{}
	var g errgroup.Group

	g.Go(func() error {
		f.personal = load(a, account, cache.CategoryPersonalRepos, func() ([]github.Repository, error) {
			return a.source.ListRepositories(ctx, account, github.ScopeUser)
		})
		return nil
	})

	g.Go(func() error {
		f.orgs = load(a, account, cache.CategoryOrganizations, func() ([]github.Organization, error) {
			return a.source.ListOrganizations(ctx, account)
		})
		if f.orgs.err != nil {
			f.orgRepos = slot[[]github.Repository]{err: f.orgs.err}
			return nil
		}
		f.orgRepos = load(a, account, cache.CategoryOrgRepos, func() ([]github.Repository, error) {
			return a.attribute(ctx, account, f.orgs.value, log)
		})
		if stderrors.Is(f.orgRepos.err, errPartialAttribution) {
			f.orgRepos.err = nil
			f.orgRepos.degraded = true
		}
		return nil
	})

	g.Go(func() error {
		f.prs = load(a, account, cache.CategoryPRs, func() (int, error) {
			return a.source.SearchPullRequestCount(ctx, account)
		})
		return nil
	})

	g.Go(func() error {
		f.commits = load(a, account, cache.CategoryCommits, func() (int, error) {
			return a.source.SearchCommitCount(ctx, account)
		})
		return nil
	})

	g.Go(func() error {
		// no credential is not a failure: skip the call and the cache
		if !a.source.HasCredential() {
			f.synthetic = true
			return nil
		}
		f.calendar = load(a, account, cache.CategoryActivities, func() ([]github.ContributionDay, error) {
			return a.source.FetchContributionCalendar(ctx, account)
		})
		if f.calendar.err != nil {
			f.synthetic = true
		}
		return nil
	})

	_ = g.Wait()

	for _, s := range []struct {
		c   cache.Category
		err error
	}{
		{cache.CategoryPersonalRepos, f.personal.err},
		{cache.CategoryOrganizations, f.orgs.err},
		{cache.CategoryOrgRepos, f.orgRepos.err},
		{cache.CategoryPRs, f.prs.err},
		{cache.CategoryCommits, f.commits.err},
		{cache.CategoryActivities, f.calendar.err},
	} {
		if s.err != nil {
			log.Debug().Err(s.err).Str("category", string(s.c)).Msg("fetch failed")
		}
	}
	return f
}

// errPartialAttribution marks organization repositories that were built
// while some listing or contributor check failed.
var errPartialAttribution = stderrors.New("organization repositories incomplete")

// attribute returns the repositories of orgs that count as the account's:
// every repository of a trusted organization, otherwise those listing the
// account as a contributor. Failures skip the affected repositories.
func (a *Aggregator) attribute(ctx context.Context, account string, orgs []github.Organization, log zerolog.Logger) ([]github.Repository, error) {
	var (
		out     = []github.Repository{}
		partial bool
	)

	for _, org := range orgs {
		repos, err := a.source.ListRepositories(ctx, org.Login, github.ScopeOrg)
		if err != nil {
			log.Debug().Err(err).Str("org", org.Login).Msg("organization repositories unavailable")
			partial = true
			continue
		}

		if config.IsTrusted(org.Login, a.opts.trustedOrgs) {
			out = append(out, repos...)
			continue
		}

		keep := make([]bool, len(repos))
		var (
			g      errgroup.Group
			mu     sync.Mutex
			failed bool
		)
		g.SetLimit(a.opts.contributorWorkers)
		for i, repo := range repos {
			g.Go(func() error {
				logins, err := a.source.ListContributors(ctx, org.Login, repo.Name)
				if err != nil {
					mu.Lock()
					failed = true
					mu.Unlock()
					return nil
				}
				for _, login := range logins {
					if strings.EqualFold(login, account) {
						keep[i] = true
						break
					}
				}
				return nil
			})
		}
		_ = g.Wait()
		if failed {
			log.Debug().Str("org", org.Login).Msg("some contributor checks failed")
			partial = true
		}

		for i, repo := range repos {
			if keep[i] {
				out = append(out, repo)
			}
		}
	}

	if partial {
		return out, errPartialAttribution
	}
	return out, nil
}

// merge turns fetched categories into a snapshot, defaulting failures.
func (a *Aggregator) merge(account string, f *fetched) (*Result, error) {
	now := a.opts.now()
	r := &Result{
		Account:       account,
		PersonalRepos: []github.Repository{},
		OrgRepos:      []github.Repository{},
		Organizations: []github.Organization{},
		FetchedAt:     now,
	}

	var err error
	if f.personal.err != nil {
		r.Degraded = append(r.Degraded, cache.CategoryPersonalRepos)
		r.Unavailable = true
		err = errors.DataUnavailable(account, f.personal.err)
	} else {
		r.Stats.PersonalRepositories = len(f.personal.value)
		r.PersonalRepos = trim(nonNil(f.personal.value), a.opts.personalLimit)
	}

	if f.orgs.err != nil {
		r.Degraded = append(r.Degraded, cache.CategoryOrganizations)
	} else {
		r.Organizations = nonNil(f.orgs.value)
	}

	switch {
	case f.orgRepos.err != nil:
		r.Degraded = append(r.Degraded, cache.CategoryOrgRepos)
	default:
		if f.orgRepos.degraded {
			r.Degraded = append(r.Degraded, cache.CategoryOrgRepos)
		}
		r.Stats.OrganizationRepositories = len(f.orgRepos.value)
		r.OrgRepos = trim(nonNil(f.orgRepos.value), a.opts.orgLimit)
	}

	if f.prs.err != nil {
		r.Degraded = append(r.Degraded, cache.CategoryPRs)
	} else {
		r.Stats.PullRequests = max(f.prs.value, 0)
	}

	if f.commits.err != nil {
		r.Degraded = append(r.Degraded, cache.CategoryCommits)
	} else {
		r.Stats.Commits = max(f.commits.value, 0)
	}

	if f.synthetic {
		r.Activities = a.opts.fallback.Generate(DefaultDays)
		r.Origin = OriginSynthetic
		if f.calendar.err != nil {
			r.Degraded = append(r.Degraded, cache.CategoryActivities)
		}
	} else {
		r.Activities = normalizeCalendar(f.calendar.value, now, DefaultDays)
		r.Origin = OriginLive
	}

	r.Stats = computeStats(r.PersonalRepos, r.OrgRepos, r.Stats)
	return r, err
}

// persistable returns the cache writes for categories that were fetched
// successfully this cycle. Cached and degraded values are not written.
func (a *Aggregator) persistable(account string, f *fetched, r *Result) []func() {
	if a.store == nil {
		return nil
	}
	opts := a.cacheOpts()
	var writes []func()

	put := func(c cache.Category, write func(key string)) {
		key := cache.Key(account, c)
		writes = append(writes, func() { write(key) })
	}

	if f.personal.ok() && !f.personal.cached {
		put(cache.CategoryPersonalRepos, func(key string) {
			cache.NewTimed[[]github.Repository](a.store, opts...).Put(key, nonNil(f.personal.value))
		})
	}
	if f.orgs.ok() && !f.orgs.cached {
		put(cache.CategoryOrganizations, func(key string) {
			cache.NewTimed[[]github.Organization](a.store, opts...).Put(key, nonNil(f.orgs.value))
		})
	}
	if f.orgRepos.ok() && !f.orgRepos.cached {
		put(cache.CategoryOrgRepos, func(key string) {
			cache.NewTimed[[]github.Repository](a.store, opts...).Put(key, nonNil(f.orgRepos.value))
		})
	}
	if f.prs.ok() && !f.prs.cached {
		put(cache.CategoryPRs, func(key string) {
			cache.NewTimed[int](a.store, opts...).Put(key, f.prs.value)
		})
	}
	if f.commits.ok() && !f.commits.cached {
		put(cache.CategoryCommits, func(key string) {
			cache.NewTimed[int](a.store, opts...).Put(key, f.commits.value)
		})
	}
	if !f.synthetic && f.calendar.ok() && !f.calendar.cached {
		put(cache.CategoryActivities, func(key string) {
			cache.NewTimed[[]github.ContributionDay](a.store, opts...).Put(key, r.Activities)
		})
	}

	// stats are derived; only cache them when every input is real
	if len(r.Degraded) == 0 && f.personal.ok() && f.orgRepos.ok() && f.prs.ok() && f.commits.ok() {
		stats := r.Stats
		put(cache.CategoryStats, func(key string) {
			cache.NewTimed[Stats](a.store, opts...).Put(key, stats)
		})
	}
	return writes
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
