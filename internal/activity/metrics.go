package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var refreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "refresh_total",
		Help:      "Refresh cycles by data origin.",
	},
	[]string{"origin"},
)
