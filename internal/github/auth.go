package github

import (
	"os"

	"github.com/cli/go-gh/v2/pkg/auth"
)

const (
	// EnvGitHubToken is the environment variable for explicit token auth.
	EnvGitHubToken = "FOLIO_GITHUB_TOKEN"

	sourceNone   = "none"
	sourceConfig = "config file"
)

// ResolveToken resolves a GitHub token using the auth chain and reports where it came from.
// Priority: 1) configured token (config file or FOLIO_GITHUB_TOKEN),
// 2) GH_TOKEN / GITHUB_TOKEN / gh CLI login via go-gh.
func ResolveToken(configured string) (token, source string) {
	if configured != "" {
		if os.Getenv(EnvGitHubToken) == configured {
			return configured, EnvGitHubToken
		}
		return configured, sourceConfig
	}

	token, source = auth.TokenForHost(Host)
	if token == "" {
		return "", sourceNone
	}
	if source == "oauth_token" {
		source = "gh CLI"
	}
	return token, source
}

// AuthMethod returns a string describing the current auth method.
func AuthMethod(configured string) string {
	_, source := ResolveToken(configured)
	return source
}
