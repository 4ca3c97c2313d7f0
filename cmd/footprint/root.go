package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/footprint/internal/config"
)

// NewRootCmd creates the root command for footprint.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "footprint",
		Short: "Aggregate the public digital footprint of a domain or username",
		Long: `footprint queries several OSINT providers concurrently for a domain or
username and merges their findings into one report: domain registration,
social media profiles, potential vulnerabilities and web intelligence.

Reports are cached (Redis when reachable, otherwise SQLite) for an hour.
Providers that need API keys read them from the environment or a .env file
and fall back to clearly labeled simulated results without them.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .footprint in current or home directory)")
	cmd.PersistentFlags().String("log-format", config.LogFormatText,
		"Log format: text or json")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
