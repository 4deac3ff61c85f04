package config

import "strings"

// IsTrusted checks if an organization login is in the trusted list.
// Entries are compared case-insensitively; a leading "@" or a
// "github.com/" prefix on an entry is ignored.
func IsTrusted(org string, trusted []string) bool {
	org = normalizeOrg(org)
	if org == "" {
		return false
	}

	for _, t := range trusted {
		if normalizeOrg(t) == org {
			return true
		}
	}

	return false
}

func normalizeOrg(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "github.com/")
	s = strings.TrimPrefix(s, "@")
	return strings.TrimSuffix(s, "/")
}
