package github

// Scope selects whose repositories ListRepositories returns.
type Scope string

const (
	ScopeUser Scope = "user"
	ScopeOrg  Scope = "org"
)

// Repository summarizes one repository surfaced by the widget.
type Repository struct {
	Name              string `json:"name"`
	URL               string `json:"url"`
	Stars             int    `json:"stars"`
	Forks             int    `json:"forks"`
	Language          string `json:"language,omitempty"`
	OrganizationOwned bool   `json:"organization_owned"`
	Organization      string `json:"organization,omitempty"`
}

// Organization summarizes an organization the account belongs to.
type Organization struct {
	Login     string `json:"login"`
	URL       string `json:"url"`
	AvatarURL string `json:"avatar_url"`
}

// ContributionDay is one day of the contribution calendar.
type ContributionDay struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// repoResponse represents one item of GitHub's repository listing.
type repoResponse struct {
	Name     string  `json:"name"`
	HTMLURL  string  `json:"html_url"`
	Stars    int     `json:"stargazers_count"`
	Forks    int     `json:"forks_count"`
	Language *string `json:"language"`
	Fork     bool    `json:"fork"`
	Owner    struct {
		Login string `json:"login"`
		Type  string `json:"type"`
	} `json:"owner"`
}

type orgResponse struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type contributorResponse struct {
	Login string `json:"login"`
}

// searchResponse represents GitHub's search API response. Only the count is used.
type searchResponse struct {
	TotalCount *int `json:"total_count"`
}

type participationResponse struct {
	All   []int `json:"all"`
	Owner []int `json:"owner"`
}
