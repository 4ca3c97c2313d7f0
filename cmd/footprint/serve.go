package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/nao1215/footprint/internal/config"
	"github.com/nao1215/footprint/internal/metrics"
	"github.com/nao1215/footprint/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis engine over HTTP",
		Long: `Serve exposes the analysis engine over HTTP.

Endpoints:
  GET /analyze?target=<domain or username>   JSON report
  GET /healthz                               liveness probe
  GET /metrics                               Prometheus metrics

Each client IP may call /analyze once per --rate-limit interval. Behind a
reverse proxy the first X-Forwarded-For entry identifies the client.

Examples:
  # Listen on the default address (:8080)
  footprint serve

  # Listen on localhost only, without rate limiting
  footprint serve --listen 127.0.0.1:9090 --rate-limit 0s`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"HTTP listen address")
	cmd.Flags().Duration("rate-limit", config.DefaultRateLimitInterval,
		"Minimum interval between two /analyze requests per client (0 disables)")
	cmd.Flags().StringSliceP("providers", "p", nil,
		"Comma-separated providers to run (default: all)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultProviderTimeout,
		"Timeout of each outbound provider request")
	cmd.Flags().Duration("dispatch-timeout", 0,
		"Deadline of each whole provider call (0 disables)")
	cmd.Flags().String("cache", config.DefaultCacheBackend,
		"Cache backend: auto, redis, sqlite or none")
	cmd.Flags().String("tor", config.TorOff,
		"Route provider traffic through Tor: off, external or embedded")
	cmd.Flags().String("tor-proxy", config.DefaultTorProxyAddress,
		"External Tor SOCKS5 proxy address")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, nil, os.Getenv)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	sess, err := openSession(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("failed to release resources", "error", err)
		}
	}()

	srv := server.New(sess.engine,
		server.Config{
			ListenAddress:     cfg.ListenAddress,
			RateLimitInterval: cfg.RateLimitInterval,
		},
		server.WithLogger(logger),
		server.WithObserver(m),
		server.WithMetricsHandler(m.Handler()),
	)
	return srv.Run(ctx)
}
