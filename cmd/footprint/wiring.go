package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/footprint/internal/cache"
	"github.com/nao1215/footprint/internal/config"
	"github.com/nao1215/footprint/internal/database"
	footprintlog "github.com/nao1215/footprint/internal/log"
	"github.com/nao1215/footprint/internal/pipeline"
	"github.com/nao1215/footprint/internal/provider"
	"github.com/nao1215/footprint/internal/source"
	"github.com/nao1215/footprint/internal/tor"
)

// loadConfig builds the configuration for cmd: defaults, then the config
// file, then the environment, then the flags the user actually set.
func loadConfig(cmd *cobra.Command, args []string, getenv func(string) string) (*config.Config, error) {
	cfg := config.NewConfig()

	if f := cmd.Flags().Lookup("config"); f != nil {
		cfg.ConfigFilePath = f.Value.String()
	}

	if path := config.FindConfigFile(cfg.ConfigFilePath); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(file)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	cfg.Targets = args
	return cfg, nil
}

// applyFlags copies the flags the user set on cmd into cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	if changed("verbose") {
		if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
			return err
		}
	}
	if changed("log-format") {
		if cfg.LogFormat, err = flags.GetString("log-format"); err != nil {
			return err
		}
	}

	stringFlags := []struct {
		flag string
		dst  *string
	}{
		{"output", &cfg.ReportFile},
		{"cache", &cfg.CacheBackend},
		{"tor", &cfg.TorMode},
		{"tor-proxy", &cfg.TorProxyAddress},
		{"listen", &cfg.ListenAddress},
	}
	for _, s := range stringFlags {
		if !changed(s.flag) {
			continue
		}
		if *s.dst, err = flags.GetString(s.flag); err != nil {
			return err
		}
	}

	bools := []struct {
		flag string
		dst  *bool
	}{
		{"json", &cfg.JSONReport},
		{"markdown", &cfg.MarkdownReport},
		{"no-cache", &cfg.NoCache},
	}
	for _, b := range bools {
		if !changed(b.flag) {
			continue
		}
		if *b.dst, err = flags.GetBool(b.flag); err != nil {
			return err
		}
	}

	durations := []struct {
		flag string
		dst  *time.Duration
	}{
		{"timeout", &cfg.ProviderTimeout},
		{"rate-limit", &cfg.RateLimitInterval},
		{"dispatch-timeout", &cfg.DispatchTimeout},
	}
	for _, d := range durations {
		if !changed(d.flag) {
			continue
		}
		if *d.dst, err = flags.GetDuration(d.flag); err != nil {
			return err
		}
	}

	if changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return err
		}
	}
	if changed("providers") {
		if cfg.Providers, err = flags.GetStringSlice("providers"); err != nil {
			return err
		}
	}
	return nil
}

// setupLogger creates the redacting logger for cfg. Analysis progress goes
// to stderr so reports on stdout stay clean.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return footprintlog.New(w, cfg.LogFormat, cfg.Verbose)
}

// openCache opens the configured cache backend. In auto mode an unreachable
// Redis falls back to SQLite, and a failing SQLite to no cache at all.
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cache.Facade, error) {
	opts := []cache.Option{cache.WithLogger(logger)}

	switch cfg.CacheBackend {
	case config.BackendNone:
		logger.Info("cache disabled")
		return cache.New(nil, opts...), nil

	case config.BackendRedis:
		store, err := openRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis cache", "address", cfg.RedisAddress)
		return cache.New(store, opts...), nil

	case config.BackendSQLite:
		store, err := openSQLite(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		return cache.New(store, opts...), nil

	default:
		redisStore, err := openRedis(ctx, cfg)
		if err == nil {
			logger.Info("using redis cache", "address", cfg.RedisAddress)
			return cache.New(redisStore, opts...), nil
		}
		logger.Debug("redis unavailable, falling back to sqlite", "error", err)

		store, err := openSQLite(ctx, cfg, logger)
		if err != nil {
			logger.Warn("no cache available, every analysis is live", "error", err)
			return cache.New(nil, opts...), nil
		}
		return cache.New(store, opts...), nil
	}
}

// openSQLite opens the embedded cache and drops rows that expired since the
// last run.
func openSQLite(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*database.DB, error) {
	store, err := database.Open(cfg.CacheDir, database.DefaultOptions())
	if err != nil {
		return nil, err
	}
	removed, err := store.Purge(ctx)
	if err != nil {
		logger.Debug("failed to purge expired cache rows", "error", err)
	}
	logger.Info("using sqlite cache", "path", store.Path(), "purged", removed)
	return store, nil
}

func openRedis(ctx context.Context, cfg *config.Config) (*cache.RedisStore, error) {
	return cache.NewRedisStore(ctx, cache.RedisConfig{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// openRoute sets up Tor routing for provider traffic.
func openRoute(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Route, error) {
	route, err := tor.Open(ctx, tor.RouteOptions{
		Mode:           cfg.TorMode,
		ProxyAddress:   cfg.TorProxyAddress,
		StartupTimeout: cfg.TorStartupTimeout,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up tor routing: %w", err)
	}
	return route, nil
}

// buildRegistry registers the enabled providers in registration order.
func buildRegistry(cfg *config.Config, client *http.Client, logger *slog.Logger) (*provider.Registry, error) {
	return newRegistry(cfg.EnabledProviders(), providerFactories(cfg, client, logger), logger)
}

// providerFactories builds every known provider from cfg.
func providerFactories(cfg *config.Config, client *http.Client, logger *slog.Logger) map[string]func() provider.Provider {
	creds := cfg.Credentials
	return map[string]func() provider.Provider{
		"domain": func() provider.Provider {
			return source.NewDomain(source.DomainConfig{Client: client, Logger: logger})
		},
		"social": func() provider.Provider {
			return source.NewSocial(source.SocialConfig{Client: client, Logger: logger})
		},
		"dork": func() provider.Provider {
			return source.NewDork(source.DefaultRand)
		},
		"nvd": func() provider.Provider {
			return source.NewNVD(source.NVDConfig{Client: client, APIKey: creds.NVDAPIKey, Logger: logger})
		},
		"deep": func() provider.Provider {
			deep := source.NewDeep(source.DeepConfig{
				Client:         client,
				Logger:         logger,
				BingAPIKey:     creds.BingAPIKey,
				BingEndpoint:   creds.BingEndpoint,
				MaxBingResults: creds.MaxBingResults,
				GitHubToken:    creds.GitHubToken,
				MaxGitHubUsers: creds.MaxGitHubUsers,
			})
			if deep.Simulated() {
				logger.Warn("no BING_API_KEY or GITHUB_TOKEN set, deep search results are simulated")
			}
			return deep
		},
	}
}

// newRegistry registers the named providers in order and freezes the
// registry. Providers the registry rejects are logged and skipped.
func newRegistry(names []string, factories map[string]func() provider.Provider, logger *slog.Logger) (*provider.Registry, error) {
	providers := make([]provider.Provider, 0, len(names))
	for _, name := range names {
		factory, ok := factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", config.ErrUnknownProvider, name)
		}
		providers = append(providers, factory())
	}

	registry := provider.NewRegistry(provider.WithRegistryLogger(logger))
	registry.MustRegister(providers...)
	registry.Freeze()
	logger.Debug("providers registered", "count", registry.Len(), "names", registry.Names())
	return registry, nil
}

// session is everything an analysis needs, opened from a Config.
type session struct {
	engine *pipeline.Engine
	cache  *cache.Facade
	route  *tor.Route
}

// openSession opens the cache and Tor route and assembles the engine.
// observer may be nil.
func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger, observer pipeline.Observer) (*session, error) {
	facade, err := openCache(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	route, err := openRoute(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Join(err, facade.Close())
	}

	client := source.NewHTTPClient(source.ClientOptions{
		Timeout:    cfg.ProviderTimeout,
		Transport:  route.Transport(),
		UserAgents: source.NewUserAgentPool(facade, source.DefaultRand),
	})
	registry, err := buildRegistry(cfg, client, logger)
	if err != nil {
		return nil, errors.Join(err, route.Close(), facade.Close())
	}

	dispatchOpts := []pipeline.DispatcherOption{
		pipeline.WithProviderTimeout(cfg.DispatchTimeout),
		pipeline.WithDispatcherLogger(logger),
	}
	engineOpts := []pipeline.EngineOption{
		pipeline.WithLogger(logger),
		pipeline.WithCacheTTL(cfg.CacheTTL),
	}
	if facade.Enabled() {
		engineOpts = append(engineOpts, pipeline.WithCache(facade))
	}
	if observer != nil {
		dispatchOpts = append(dispatchOpts, pipeline.WithDispatcherObserver(observer))
		engineOpts = append(engineOpts, pipeline.WithObserver(observer))
	}
	engineOpts = append(engineOpts,
		pipeline.WithDispatcher(pipeline.NewDispatcher(registry, dispatchOpts...)))

	logger.Debug("engine ready", "providers", registry.Names())
	return &session{
		engine: pipeline.NewEngine(registry, engineOpts...),
		cache:  facade,
		route:  route,
	}, nil
}

// Close releases the Tor route and the cache.
func (s *session) Close() error {
	return errors.Join(s.route.Close(), s.cache.Close())
}

// openOutput returns the report destination: the file at path, created with
// its parent directories, or stdout when path is empty.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
