// Package config handles folio configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HartBrook/folio/internal/errors"
	"gopkg.in/yaml.v3"
)

// CacheConfig contains cache settings.
type CacheConfig struct {
	Backend string `yaml:"backend"` // sqlite, file, or memory
}

// GitHubConfig contains GitHub API settings.
type GitHubConfig struct {
	// Token is an optional credential. Prefer FOLIO_GITHUB_TOKEN or `gh auth login`.
	Token   string `yaml:"token,omitempty"`
	Retries int    `yaml:"retries"`

	// ContributorWorkers bounds concurrent contributor checks for untrusted orgs.
	ContributorWorkers int `yaml:"contributor_workers"`
}

// DisplayConfig controls how many repositories each list keeps.
type DisplayConfig struct {
	PersonalRepos int `yaml:"personal_repos"`
	OrgRepos      int `yaml:"org_repos"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig contains settings for `folio serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config represents the folio configuration file.
type Config struct {
	Version int `yaml:"version"`

	// Account is the default GitHub handle shown by the widget.
	Account string `yaml:"account"`

	// TrustedOrgs lists organizations whose repositories are all attributed to the account
	// without a contributor check.
	TrustedOrgs []string `yaml:"trusted_orgs,omitempty"`

	Cache   CacheConfig   `yaml:"cache"`
	GitHub  GitHubConfig  `yaml:"github"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
}

// Default values.
const (
	DefaultVersion       = 1
	DefaultCacheBackend  = "sqlite"
	DefaultRetries       = 2
	DefaultPersonalRepos = 2
	DefaultOrgRepos      = 3
	MaxDisplayedRepos    = 3
	DefaultWorkers       = 4
	DefaultLogLevel      = "info"
	DefaultServerAddr    = ":8080"
)

// Cache backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// LoadFrom reads and validates config from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to read config", "", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to parse config YAML", "Check config syntax", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault reads config from path, falling back to defaults when the file is missing.
// Environment overrides are applied in both cases.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	if err != nil {
		if !errors.Is(err, errors.ErrConfigNotFound) {
			return nil, err
		}
		cfg = Default()
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes config to a specific path.
func SaveTo(cfg *Config, path string) error {
	cfg.applyDefaults()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, "failed to marshal config", "", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, "failed to create config directory", "", err)
	}

	// 0600: the file may carry a token
	return os.WriteFile(path, data, 0600)
}

// Validate checks config for valid values.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return errors.ConfigInvalid("cache.backend must be one of sqlite, file, memory")
	}

	if c.GitHub.Retries < 0 {
		return errors.ConfigInvalid("github.retries cannot be negative")
	}
	if c.GitHub.ContributorWorkers < 0 {
		return errors.ConfigInvalid("github.contributor_workers cannot be negative")
	}
	if c.Display.PersonalRepos < 0 || c.Display.OrgRepos < 0 {
		return errors.ConfigInvalid("display limits cannot be negative")
	}
	if c.Display.PersonalRepos > MaxDisplayedRepos || c.Display.OrgRepos > MaxDisplayedRepos {
		return errors.ConfigInvalid(fmt.Sprintf("display limits cannot exceed %d", MaxDisplayedRepos))
	}
	if strings.ContainsAny(c.Account, " /") {
		return errors.ConfigInvalid("account must be a bare GitHub handle")
	}

	return nil
}

// applyDefaults sets default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = DefaultVersion
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.GitHub.Retries == 0 {
		c.GitHub.Retries = DefaultRetries
	}
	if c.GitHub.ContributorWorkers == 0 {
		c.GitHub.ContributorWorkers = DefaultWorkers
	}
	if c.Display.PersonalRepos == 0 {
		c.Display.PersonalRepos = DefaultPersonalRepos
	}
	if c.Display.OrgRepos == 0 {
		c.Display.OrgRepos = DefaultOrgRepos
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
}

// Default returns a config with every field at its default.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// NewSimpleConfig creates a config for a single account.
func NewSimpleConfig(account string) *Config {
	cfg := Default()
	cfg.Account = account
	return cfg
}
