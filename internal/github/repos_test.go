package github

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/HartBrook/folio/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRepositories_UserDropsForksAndPaginates(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			assert.Equal(t, "owner", r.URL.Query().Get("type"))
			assert.Equal(t, "updated", r.URL.Query().Get("sort"))
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			w.Header().Set("Link", fmt.Sprintf(`<%s/users/octocat/repos?type=owner&page=2>; rel="next"`, srvURL))
			fmt.Fprint(w, `[
				{"name":"hello-world","html_url":"https://github.com/octocat/hello-world","stargazers_count":12,"forks_count":3,"language":"Go","fork":false},
				{"name":"forked","html_url":"https://github.com/octocat/forked","stargazers_count":99,"forks_count":9,"language":"C","fork":true}
			]`)
		case "2":
			fmt.Fprint(w, `[{"name":"spoon-knife","html_url":"https://github.com/octocat/spoon-knife","stargazers_count":1,"forks_count":0,"language":null,"fork":false}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	srv := newTestServer(t, mux)
	srvURL = srv.URL
	c := newTestClient(t, srv)

	repos, err := c.ListRepositories(context.Background(), "octocat", ScopeUser)
	require.NoError(t, err)

	assert.Equal(t, []Repository{
		{Name: "hello-world", URL: "https://github.com/octocat/hello-world", Stars: 12, Forks: 3, Language: "Go"},
		{Name: "spoon-knife", URL: "https://github.com/octocat/spoon-knife", Stars: 1},
	}, repos)
}

func TestListRepositories_OrgScope(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orgs/acme/repos", r.URL.Path)
		assert.Equal(t, "all", r.URL.Query().Get("type"))
		fmt.Fprint(w, `[{"name":"rocket","html_url":"https://github.com/acme/rocket","stargazers_count":8,"forks_count":2,"language":"Rust","fork":true}]`)
	}))
	c := newTestClient(t, srv)

	repos, err := c.ListRepositories(context.Background(), "acme", ScopeOrg)
	require.NoError(t, err)
	require.Len(t, repos, 1, "forks are kept for organizations")
	assert.True(t, repos[0].OrganizationOwned)
	assert.Equal(t, "acme", repos[0].Organization)
}

func TestListRepositories_PageLimit(t *testing.T) {
	var srvURL string
	calls := 0
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Link", fmt.Sprintf(`<%s/users/octocat/repos?page=%d>; rel="next"`, srvURL, calls+1))
		fmt.Fprint(w, `[]`)
	}))
	srvURL = srv.URL
	c := newTestClient(t, srv)

	_, err := c.ListRepositories(context.Background(), "octocat", ScopeUser)
	require.NoError(t, err)
	assert.Equal(t, maxPages, calls)
}

func TestListRepositories_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errors.ErrorCode
	}{
		{"missing user", http.StatusNotFound, `{"message":"Not Found"}`, errors.ErrNotFound},
		{"bad json", http.StatusOK, `{"oops":`, errors.ErrMalformedResponse},
		{"object instead of list", http.StatusOK, `{"message":"hi"}`, errors.ErrMalformedResponse},
		{"rate limited", http.StatusTooManyRequests, ``, errors.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			c := newTestClient(t, srv)

			repos, err := c.ListRepositories(context.Background(), "octocat", ScopeUser)
			assert.Nil(t, repos)
			assert.Equal(t, tt.want, errors.CodeOf(err))
		})
	}
}

func TestListOrganizations(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/orgs", r.URL.Path)
		fmt.Fprint(w, `[{"login":"github","url":"https://api.github.com/orgs/github","avatar_url":"https://avatars.githubusercontent.com/u/9919"}]`)
	}))
	c := newTestClient(t, srv)

	orgs, err := c.ListOrganizations(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, []Organization{{
		Login:     "github",
		URL:       "https://github.com/github",
		AvatarURL: "https://avatars.githubusercontent.com/u/9919",
	}}, orgs)
}

func TestListContributors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/rocket/contributors", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"login":"Octocat"},{"login":"hubot"},{"type":"Anonymous"}]`)
	})
	mux.HandleFunc("/repos/acme/empty/contributors", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := newTestServer(t, mux)
	c := newTestClient(t, srv)

	logins, err := c.ListContributors(context.Background(), "acme", "rocket")
	require.NoError(t, err)
	assert.Equal(t, []string{"Octocat", "hubot"}, logins)

	logins, err = c.ListContributors(context.Background(), "acme", "empty")
	require.NoError(t, err)
	assert.Empty(t, logins)

	_, err = c.ListContributors(context.Background(), "acme", "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
