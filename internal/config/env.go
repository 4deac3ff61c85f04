package config

import (
	"github.com/HartBrook/folio/internal/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "FOLIO"

// Env holds the environment overrides. Empty values leave the file config untouched.
type Env struct {
	Account      string `envconfig:"ACCOUNT"`
	GitHubToken  string `envconfig:"GITHUB_TOKEN"`
	CacheBackend string `envconfig:"CACHE_BACKEND"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	ServerAddr   string `envconfig:"SERVER_ADDR"`
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// ReadEnv parses FOLIO_* variables.
func ReadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, errors.Wrap(errors.ErrConfigInvalid, "failed to process environment variables", "", err)
	}
	return env, nil
}

// ApplyEnv overlays FOLIO_* variables onto the config and re-validates it.
func (c *Config) ApplyEnv() error {
	env, err := ReadEnv()
	if err != nil {
		return err
	}

	if env.Account != "" {
		c.Account = env.Account
	}
	if env.GitHubToken != "" {
		c.GitHub.Token = env.GitHubToken
	}
	if env.CacheBackend != "" {
		c.Cache.Backend = env.CacheBackend
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.ServerAddr != "" {
		c.Server.Addr = env.ServerAddr
	}

	return c.Validate()
}
