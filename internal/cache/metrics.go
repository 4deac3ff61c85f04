package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup results.
const (
	resultHit         = "hit"
	resultMiss        = "miss"
	resultStale       = "stale"
	resultCorrupt     = "corrupt"
	resultUnavailable = "unavailable"
)

var lookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "cache_lookups_total",
		Help:      "TimedCache lookups by category and result.",
	},
	[]string{"category", "result"},
)

func recordLookup(key, result string) {
	category := "unknown"
	if _, c, ok := SplitKey(key); ok {
		category = string(c)
	}
	lookupsTotal.WithLabelValues(category, result).Inc()
}
