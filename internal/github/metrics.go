package github

import (
	"github.com/HartBrook/folio/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "github_requests_total",
		Help:      "GitHub API calls by endpoint and outcome, after retries.",
	},
	[]string{"endpoint", "outcome"},
)

func recordRequest(endpoint string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(errors.CodeOf(err))
	}
	requestsTotal.WithLabelValues(endpoint, outcome).Inc()
}
