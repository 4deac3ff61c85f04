// Package activity aggregates a GitHub account's activity into one snapshot.
package activity

import (
	"time"

	"github.com/HartBrook/folio/internal/cache"
	"github.com/HartBrook/folio/internal/github"
)

// Origin tells the presentation layer where a snapshot's data came from.
type Origin string

const (
	OriginLive      Origin = "live"
	OriginCached    Origin = "cached"
	OriginSynthetic Origin = "synthetic"
)

// Stats are the headline numbers. Each defaults to 0 independently.
type Stats struct {
	// TotalContributions is stars+forks over the returned repositories,
	// not a commit count.
	TotalContributions       int `json:"total_contributions"`
	PullRequests             int `json:"pull_request_count"`
	Commits                  int `json:"commit_count"`
	PersonalRepositories     int `json:"personal_repository_count"`
	OrganizationRepositories int `json:"organization_repository_count"`
}

// Result is one snapshot. It is never mutated after it is returned.
type Result struct {
	Account       string                   `json:"account"`
	Activities    []github.ContributionDay `json:"activities"`
	PersonalRepos []github.Repository      `json:"personal_repos"`
	OrgRepos      []github.Repository      `json:"org_repos"`
	Organizations []github.Organization    `json:"organizations"`
	Stats         Stats                    `json:"stats"`
	Origin        Origin                   `json:"data_origin"`

	// Degraded lists the categories that fell back to an empty or synthetic value.
	Degraded []cache.Category `json:"degraded,omitempty"`
	// Unavailable is set when the refresh could not proceed at all.
	Unavailable bool      `json:"unavailable"`
	RefreshID   string    `json:"refresh_id"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// IsDegraded reports whether category c fell back.
func (r *Result) IsDegraded(c cache.Category) bool {
	for _, d := range r.Degraded {
		if d == c {
			return true
		}
	}
	return false
}

// computeStats fills TotalContributions from the repositories actually returned.
func computeStats(personal, org []github.Repository, stats Stats) Stats {
	total := 0
	for _, r := range personal {
		total += r.Stars + r.Forks
	}
	for _, r := range org {
		total += r.Stars + r.Forks
	}
	stats.TotalContributions = total
	return stats
}

func trim[T any](items []T, n int) []T {
	if n < 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
