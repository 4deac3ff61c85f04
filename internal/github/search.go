package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/HartBrook/folio/internal/errors"
)

// participationSample is how many repositories the commit estimate looks at.
const participationSample = 5

// SearchPullRequestCount returns how many pull requests the account has authored.
func (c *Client) SearchPullRequestCount(ctx context.Context, account string) (int, error) {
	return c.searchCount(ctx, "search/issues", "search/issues", fmt.Sprintf("author:%s type:pr", account))
}

// SearchCommitCount returns how many commits the account has authored.
// When commit search fails it falls back to an estimate from the weekly
// participation stats of the account's most recently updated repositories.
func (c *Client) SearchCommitCount(ctx context.Context, account string) (int, error) {
	count, err := c.searchCount(ctx, "search/commits", "search/commits", "author:"+account)
	if err == nil {
		return count, nil
	}

	c.log.Debug().Err(err).Str("account", account).Msg("commit search failed, estimating from participation")
	return c.estimateCommits(ctx, account)
}

func (c *Client) searchCount(ctx context.Context, endpoint, path, q string) (int, error) {
	resp, err := c.get(ctx, endpoint, path, map[string]string{"q": q, "per_page": "1"})
	if err != nil {
		return 0, err
	}

	var response searchResponse
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		return 0, errors.MalformedResponse(endpoint, err)
	}
	if response.TotalCount == nil || *response.TotalCount < 0 {
		return 0, errors.MalformedResponse(endpoint, fmt.Errorf("missing total_count"))
	}
	return *response.TotalCount, nil
}

// estimateCommits sums the owner's weekly commits over the last year across
// up to participationSample repositories. Repositories whose stats fail are
// skipped; the estimate only fails when none could be read.
func (c *Client) estimateCommits(ctx context.Context, account string) (int, error) {
	repos, err := c.ListRepositories(ctx, account, ScopeUser)
	if err != nil {
		return 0, err
	}
	if len(repos) > participationSample {
		repos = repos[:participationSample]
	}

	var (
		total   int
		lastErr error
		readAny = len(repos) == 0
	)
	for _, r := range repos {
		n, err := c.ownerCommits(ctx, account, r.Name)
		if err != nil {
			lastErr = err
			continue
		}
		readAny = true
		total += n
	}

	if !readAny {
		return 0, lastErr
	}
	return total, nil
}

func (c *Client) ownerCommits(ctx context.Context, owner, repo string) (int, error) {
	const endpoint = "repos/stats/participation"

	path := fmt.Sprintf("repos/%s/%s/stats/participation", url.PathEscape(owner), url.PathEscape(repo))
	resp, err := c.get(ctx, endpoint, path, nil)
	if err != nil {
		return 0, err
	}
	// 202 means GitHub is still computing the stats.
	if resp.StatusCode() == http.StatusAccepted || resp.StatusCode() == http.StatusNoContent {
		return 0, nil
	}

	var stats participationResponse
	if err := json.Unmarshal(resp.Body(), &stats); err != nil {
		return 0, errors.MalformedResponse(endpoint, err)
	}

	total := 0
	for _, n := range stats.Owner {
		if n > 0 {
			total += n
		}
	}
	return total, nil
}
