package cli

import (
	"strings"
	"time"

	"github.com/HartBrook/folio/internal/activity"
	"github.com/HartBrook/folio/internal/cache"
	"github.com/HartBrook/folio/internal/config"
	"github.com/HartBrook/folio/internal/errors"
	"github.com/HartBrook/folio/internal/github"
	"github.com/HartBrook/folio/internal/logger"
	"github.com/rs/zerolog"
)

// runtime bundles what every data command needs.
type runtime struct {
	cfg         *config.Config
	paths       *config.Paths
	log         zerolog.Logger
	store       cache.Store
	client      *github.Client
	tokenSource string
}

// loadConfig reads .env, the config file, FOLIO_* overrides and then flags.
func loadConfig(g *globalOptions) (*config.Config, *config.Paths, error) {
	config.LoadDotEnv()

	paths := config.NewPaths()
	path := paths.ConfigFile
	if g.configPath != "" {
		path = g.configPath
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.cacheBackend != "" {
		cfg.Cache.Backend = g.cacheBackend
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return cfg, paths, nil
}

// runtimeOptions adjust newRuntime per command.
type runtimeOptions struct {
	// noAuth ignores every credential.
	noAuth bool
	// service logs JSON lines tagged with the service name instead of console output.
	service bool
}

// newRuntime builds the logger, client and cache.
func newRuntime(g *globalOptions, ro runtimeOptions) (*runtime, error) {
	cfg, paths, err := loadConfig(g)
	if err != nil {
		return nil, err
	}

	log := logger.Console(cfg.Log.Level)
	if ro.service {
		log = logger.New("folio", cfg.Log.Level)
	}

	token, source := "", "none"
	if !ro.noAuth {
		token, source = github.ResolveToken(cfg.GitHub.Token)
	}

	client, err := github.NewClient(
		github.WithToken(token),
		github.WithUserAgent("folio/"+Version),
		github.WithRetry(cfg.GitHub.Retries, 500*time.Millisecond),
		github.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("auth", source).Str("backend", cfg.Cache.Backend).Msg("runtime ready")

	return &runtime{
		cfg:         cfg,
		paths:       paths,
		log:         log,
		store:       cache.Open(cfg.Cache.Backend, paths, log),
		client:      client,
		tokenSource: source,
	}, nil
}

func (r *runtime) aggregator(opts ...activity.Option) *activity.Aggregator {
	base := []activity.Option{
		activity.WithTrustedOrgs(r.cfg.TrustedOrgs),
		activity.WithLimits(r.cfg.Display.PersonalRepos, r.cfg.Display.OrgRepos),
		activity.WithContributorWorkers(r.cfg.GitHub.ContributorWorkers),
		activity.WithLogger(r.log),
	}
	return activity.NewAggregator(r.client, r.store, append(base, opts...)...)
}

func (r *runtime) Close() {
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.Debug().Err(err).Msg("closing cache")
		}
	}
}

// resolveAccount picks the positional account, falling back to the configured one.
func resolveAccount(args []string, cfg *config.Config) (string, error) {
	account := cfg.Account
	if len(args) > 0 {
		account = args[0]
	}
	account = strings.TrimPrefix(strings.TrimSpace(account), "@")
	if account == "" {
		return "", errors.New(errors.ErrConfigInvalid, "no account given",
			"Pass an account, set FOLIO_ACCOUNT, or run `folio init <account>`")
	}
	return account, nil
}
