package activity

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/HartBrook/folio/internal/github"
)

const (
	// DefaultDays is the length of the activity window.
	DefaultDays = github.CalendarDays

	maxSyntheticCount = 9
	dateLayout        = "2006-01-02"
)

// FallbackGenerator produces synthetic contribution days when the real
// calendar is unavailable. Counts are random; dates never are.
type FallbackGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// FallbackOption configures a FallbackGenerator.
type FallbackOption func(*FallbackGenerator)

// WithRandSource sets the random source, e.g. a fixed-seed PCG in tests.
func WithRandSource(src rand.Source) FallbackOption {
	return func(g *FallbackGenerator) { g.rng = rand.New(src) }
}

// WithFallbackClock sets the clock that decides what "today" is.
func WithFallbackClock(now func() time.Time) FallbackOption {
	return func(g *FallbackGenerator) { g.now = now }
}

// NewFallbackGenerator creates a generator seeded from the current time.
func NewFallbackGenerator(opts ...FallbackOption) *FallbackGenerator {
	seed := uint64(time.Now().UnixNano())
	g := &FallbackGenerator{
		rng: rand.New(rand.NewPCG(seed, seed>>1|1)),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns one entry per day for the last days days ending today,
// oldest first, each with a count in [0, 9]. days <= 0 means DefaultDays.
func (g *FallbackGenerator) Generate(days int) []github.ContributionDay {
	if days <= 0 {
		days = DefaultDays
	}

	dates := window(g.now(), days)

	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]github.ContributionDay, len(dates))
	for i, d := range dates {
		out[i] = github.ContributionDay{Date: d, Count: g.rng.IntN(maxSyntheticCount + 1)}
	}
	return out
}

// window returns the last n calendar dates ending on now's date, ascending.
func window(now time.Time, n int) []string {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	dates := make([]string, n)
	for i := 0; i < n; i++ {
		dates[i] = today.AddDate(0, 0, i-(n-1)).Format(dateLayout)
	}
	return dates
}

// normalizeCalendar maps a fetched calendar onto exactly n contiguous days
// ending today. Days GitHub did not report count as zero.
func normalizeCalendar(days []github.ContributionDay, now time.Time, n int) []github.ContributionDay {
	counts := make(map[string]int, len(days))
	for _, d := range days {
		if d.Count > 0 {
			counts[d.Date] = d.Count
		}
	}

	dates := window(now, n)
	out := make([]github.ContributionDay, len(dates))
	for i, date := range dates {
		out[i] = github.ContributionDay{Date: date, Count: counts[date]}
	}
	return out
}
