package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/HartBrook/folio/internal/errors"
)

// ListRepositories lists owner's repositories, most recently updated first.
// ScopeUser returns repositories the account owns, without forks.
// ScopeOrg returns every repository of the organization the credential can see.
func (c *Client) ListRepositories(ctx context.Context, owner string, scope Scope) ([]Repository, error) {
	if owner == "" {
		return nil, errors.NotFound("repositories of an empty owner")
	}

	var (
		endpoint string
		path     string
		params   = map[string]string{"sort": "updated", "per_page": perPage}
	)
	switch scope {
	case ScopeOrg:
		endpoint = "orgs/repos"
		path = fmt.Sprintf("orgs/%s/repos", url.PathEscape(owner))
		params["type"] = "all"
	default:
		endpoint = "users/repos"
		path = fmt.Sprintf("users/%s/repos", url.PathEscape(owner))
		params["type"] = "owner"
	}

	var raw []repoResponse
	for page := 0; path != "" && page < maxPages; page++ {
		resp, err := c.get(ctx, endpoint, path, params)
		if err != nil {
			return nil, err
		}

		var items []repoResponse
		if err := json.Unmarshal(resp.Body(), &items); err != nil {
			return nil, errors.MalformedResponse(endpoint, err)
		}
		raw = append(raw, items...)

		// the next link already carries the query string
		path = nextPage(resp.Header())
		params = nil
	}

	repos := make([]Repository, 0, len(raw))
	for _, r := range raw {
		if scope == ScopeUser && r.Fork {
			continue
		}
		repo := Repository{
			Name:  r.Name,
			URL:   r.HTMLURL,
			Stars: r.Stars,
			Forks: r.Forks,
		}
		if r.Language != nil {
			repo.Language = *r.Language
		}
		if scope == ScopeOrg {
			repo.OrganizationOwned = true
			repo.Organization = owner
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

// ListOrganizations lists the account's public organization memberships.
func (c *Client) ListOrganizations(ctx context.Context, account string) ([]Organization, error) {
	const endpoint = "users/orgs"

	resp, err := c.get(ctx, endpoint, fmt.Sprintf("users/%s/orgs", url.PathEscape(account)), map[string]string{"per_page": perPage})
	if err != nil {
		return nil, err
	}

	var raw []orgResponse
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, errors.MalformedResponse(endpoint, err)
	}

	orgs := make([]Organization, 0, len(raw))
	for _, o := range raw {
		orgs = append(orgs, Organization{
			Login:     o.Login,
			URL:       "https://github.com/" + o.Login,
			AvatarURL: o.AvatarURL,
		})
	}
	return orgs, nil
}

// ListContributors returns the logins of a repository's contributors (first page).
// An empty repository yields an empty list.
func (c *Client) ListContributors(ctx context.Context, owner, repo string) ([]string, error) {
	const endpoint = "repos/contributors"

	path := fmt.Sprintf("repos/%s/%s/contributors", url.PathEscape(owner), url.PathEscape(repo))
	resp, err := c.get(ctx, endpoint, path, map[string]string{"per_page": perPage})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNoContent || len(resp.Body()) == 0 {
		return []string{}, nil
	}

	var raw []contributorResponse
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, errors.MalformedResponse(endpoint, err)
	}

	logins := make([]string, 0, len(raw))
	for _, r := range raw {
		if r.Login != "" {
			logins = append(logins, r.Login)
		}
	}
	return logins, nil
}
