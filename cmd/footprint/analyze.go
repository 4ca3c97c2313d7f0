package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/footprint/internal/config"
	"github.com/nao1215/footprint/internal/pipeline"
	"github.com/nao1215/footprint/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [target]...",
		Short: "Analyze the digital footprint of domains or usernames",
		Long: `Analyze queries every enabled provider for each target and prints one
report per target.

Providers:
  domain   RDAP registration data for the target's registrable domain
  social   profile probes on Twitter/X, LinkedIn, GitHub, Instagram and Reddit
  dork     simulated search engine dorking
  nvd      NIST NVD keyword search for potential vulnerabilities
  deep     Bing web search and GitHub user/code search (BING_API_KEY, GITHUB_TOKEN)

Examples:
  # Analyze a single target
  footprint analyze johndoe

  # Analyze several targets, three at a time
  footprint analyze --batch 3 example.com johndoe janedoe

  # Skip the cache and write a Markdown report
  footprint analyze --no-cache --markdown -o report.md example.com

  # Only run selected providers
  footprint analyze --providers social,deep johndoe

  # Route provider traffic through a local Tor proxy
  footprint analyze --tor external --tor-proxy 127.0.0.1:9050 johndoe`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write reports to the given file path (creates directories if needed)")
	cmd.Flags().Bool("no-cache", false,
		"Skip the cache lookup (fresh reports are still cached)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of targets analyzed concurrently")
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

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, args, os.Getenv)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.ValidateTargets(); err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("failed to release resources", "error", err)
		}
	}()

	out, closeOut, err := openOutput(cfg.ReportFile, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck // write errors are reported by Write

	writer, err := report.NewWriter(reportFormat(cfg), out)
	if err != nil {
		return err
	}
	return runAnalysis(ctx, cfg, sess.engine, writer, cmd.ErrOrStderr(), logger)
}

// reportFormat maps the report flags to a writer format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// runAnalysis analyzes cfg.Targets with analyzer and writes each report as
// soon as it is ready. Failed targets are reported on status and counted;
// the returned error summarizes them.
func runAnalysis(
	ctx context.Context,
	cfg *config.Config,
	analyzer pipeline.Analyzer,
	writer report.Writer,
	status io.Writer,
	logger *slog.Logger,
) error {
	var analyzeOpts []pipeline.AnalyzeOption
	if cfg.NoCache {
		analyzeOpts = append(analyzeOpts, pipeline.WithNoCache())
	}

	bp := pipeline.NewBatchProcessor(analyzer,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
		pipeline.WithAnalyzeOptions(analyzeOpts...),
	)

	start := time.Now()
	total := len(cfg.Targets)

	var (
		mu     sync.Mutex
		failed int
	)
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(r pipeline.BatchResult, index int) {
		mu.Lock()
		defer mu.Unlock()

		if r.Err != nil {
			failed++
			fmt.Fprintf(status, "[%d/%d] %s: %v\n", index+1, total, r.Target, r.Err)
			return
		}
		if total > 1 {
			fmt.Fprintf(status, "[%d/%d] %s: done\n", index+1, total, r.Target)
		}
		if _, err := writer.Write(r.Report); err != nil {
			failed++
			logger.Error("failed to write report", "target", r.Target, "error", err)
		}
	})

	logger.Info("analysis finished",
		"targets", total,
		"failed", failed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, total)
	}
	return nil
}
