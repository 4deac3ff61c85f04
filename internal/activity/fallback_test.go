package activity

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/HartBrook/folio/internal/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackGenerator_Shape(t *testing.T) {
	now := time.Date(2026, 3, 5, 23, 59, 0, 0, time.UTC)
	g := NewFallbackGenerator(
		WithRandSource(rand.NewPCG(1, 2)),
		WithFallbackClock(func() time.Time { return now }),
	)

	for run := 0; run < 50; run++ {
		days := g.Generate(14)
		require.Len(t, days, 14)

		assert.Equal(t, "2026-02-20", days[0].Date)
		assert.Equal(t, "2026-03-05", days[13].Date)

		for i, d := range days {
			assert.GreaterOrEqual(t, d.Count, 0)
			assert.LessOrEqual(t, d.Count, 9)
			if i == 0 {
				continue
			}
			prev, err := time.Parse(dateLayout, days[i-1].Date)
			require.NoError(t, err)
			cur, err := time.Parse(dateLayout, d.Date)
			require.NoError(t, err)
			assert.Equal(t, 24*time.Hour, cur.Sub(prev), "dates must be consecutive")
		}
	}
}

func TestFallbackGenerator_Length(t *testing.T) {
	g := NewFallbackGenerator()

	tests := []struct {
		days int
		want int
	}{
		{0, DefaultDays},
		{-3, DefaultDays},
		{1, 1},
		{7, 7},
		{30, 30},
	}
	for _, tt := range tests {
		assert.Len(t, g.Generate(tt.days), tt.want)
	}
}

func TestFallbackGenerator_Deterministic(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	a := NewFallbackGenerator(WithRandSource(rand.NewPCG(42, 7)), WithFallbackClock(clock))
	b := NewFallbackGenerator(WithRandSource(rand.NewPCG(42, 7)), WithFallbackClock(clock))

	assert.Equal(t, a.Generate(14), b.Generate(14))
}

func TestFallbackGenerator_UsesAllValues(t *testing.T) {
	g := NewFallbackGenerator(WithRandSource(rand.NewPCG(3, 4)))

	seen := map[int]bool{}
	for i := 0; i < 100; i++ {
		for _, d := range g.Generate(14) {
			seen[d.Count] = true
		}
	}
	assert.Len(t, seen, 10)
}

func TestNormalizeCalendar(t *testing.T) {
	now := time.Date(2026, 5, 14, 8, 0, 0, 0, time.UTC)

	days := normalizeCalendar([]github.ContributionDay{
		{Date: "2026-04-01", Count: 50}, // outside the window
		{Date: "2026-05-01", Count: 2},
		{Date: "2026-05-10", Count: 4},
		{Date: "2026-05-11", Count: -1},
	}, now, 14)

	require.Len(t, days, 14)
	assert.Equal(t, github.ContributionDay{Date: "2026-05-01", Count: 2}, days[0])
	assert.Equal(t, github.ContributionDay{Date: "2026-05-10", Count: 4}, days[9])
	assert.Equal(t, github.ContributionDay{Date: "2026-05-11", Count: 0}, days[10])
	assert.Equal(t, github.ContributionDay{Date: "2026-05-14", Count: 0}, days[13])

	total := 0
	for _, d := range days {
		total += d.Count
	}
	assert.Equal(t, 6, total)
}
