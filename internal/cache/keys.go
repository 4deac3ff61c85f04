package cache

import "strings"

// Category is one logical slice of cached GitHub data.
type Category string

const (
	CategoryPersonalRepos Category = "personal_repos"
	CategoryOrgRepos      Category = "org_repos"
	CategoryOrganizations Category = "organizations"
	CategoryStats         Category = "github_stats"
	CategoryActivities    Category = "github_activities"
	CategoryPRs           Category = "github_prs"
	CategoryCommits       Category = "github_commits"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryPersonalRepos,
	CategoryOrgRepos,
	CategoryOrganizations,
	CategoryStats,
	CategoryActivities,
	CategoryPRs,
	CategoryCommits,
}

// Key returns the account-scoped key "{account}_{category}".
// GitHub handles are case-insensitive and never contain underscores,
// so the first underscore always separates account from category.
func Key(account string, c Category) string {
	return strings.ToLower(account) + "_" + string(c)
}

// SplitKey reverses Key.
func SplitKey(key string) (account string, c Category, ok bool) {
	account, rest, ok := strings.Cut(key, "_")
	if !ok || account == "" || rest == "" {
		return "", "", false
	}
	return account, Category(rest), true
}
