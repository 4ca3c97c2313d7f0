package source

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/footprint/internal/dedup"
	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/provider"
)

// DeepConfig configures the deep search provider.
type DeepConfig struct {
	Client *http.Client
	Logger *slog.Logger

	// BingAPIKey enables Bing web search.
	BingAPIKey     string
	BingEndpoint   string
	MaxBingResults int

	// GitHubToken enables GitHub user and code search.
	GitHubToken    string
	GitHubAPIBase  string
	MaxGitHubUsers int

	// Rand drives the simulated fallback.
	Rand Rand
}

// Deep combines Bing web search and GitHub user and code search.
// Without credentials it falls back to a clearly labeled simulation that
// performs no network access.
type Deep struct {
	cfg DeepConfig
}

type searchFunc func(ctx context.Context, target string) ([]model.Record, error)

// NewDeep creates the deep search provider.
func NewDeep(cfg DeepConfig) *Deep {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BingEndpoint == "" {
		cfg.BingEndpoint = DefaultBingEndpoint
	}
	if cfg.MaxBingResults <= 0 {
		cfg.MaxBingResults = DefaultMaxBingResults
	}
	if cfg.GitHubAPIBase == "" {
		cfg.GitHubAPIBase = DefaultGitHubAPIBase
	}
	cfg.GitHubAPIBase = strings.TrimRight(cfg.GitHubAPIBase, "/")
	if cfg.MaxGitHubUsers <= 0 {
		cfg.MaxGitHubUsers = DefaultMaxGitHubUsers
	}
	if cfg.Rand == nil {
		cfg.Rand = DefaultRand
	}
	return &Deep{cfg: cfg}
}

// Name implements provider.Provider.
func (d *Deep) Name() string { return "deep" }

// Simulated reports whether no credentials are configured.
func (d *Deep) Simulated() bool {
	return d.cfg.BingAPIKey == "" && d.cfg.GitHubToken == ""
}

// Collect implements provider.Provider. Searches run concurrently; a failed
// search is logged and contributes nothing. The combined hits are
// deduplicated, Bing results first, then GitHub users, then code matches.
func (d *Deep) Collect(ctx context.Context, target string) (provider.Result, error) {
	if d.Simulated() {
		return provider.Batch(d.simulate(target)...), nil
	}

	type search struct {
		name string
		run  searchFunc
	}
	var searches []search
	if d.cfg.BingAPIKey != "" {
		searches = append(searches, search{"bing", d.bingSearch})
	}
	if d.cfg.GitHubToken != "" {
		searches = append(searches,
			search{"github users", d.githubUserSearch},
			search{"github code", d.githubCodeSearch},
		)
	}

	results := make([][]model.Record, len(searches))
	var g errgroup.Group
	for i, s := range searches {
		g.Go(func() error {
			records, err := s.run(ctx, target)
			if err != nil {
				d.cfg.Logger.Warn("deep search backend failed", "backend", s.name, "target", target, "error", err)
				return nil
			}
			results[i] = records
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // failures are logged per backend

	var combined []model.Record
	for _, r := range results {
		combined = append(combined, r...)
	}

	findings := dedup.Records(combined, d.cfg.Logger)
	records := make([]model.Record, len(findings))
	for i, f := range findings {
		records[i] = f
	}
	return provider.Batch(records...), nil
}

// simulate produces paste mentions for a few username permutations and
// sometimes a GitHub profile, all marked as simulated.
func (d *Deep) simulate(target string) []model.Record {
	var out []model.Record
	for _, suffix := range []string{"", "01", "_dev", "_admin"} {
		p := target + suffix
		if d.cfg.Rand.Float64() < 0.20 {
			out = append(out, model.WebHit{
				Source:     SimulatedSource,
				ResultType: SimulatedResultType,
				Data: map[string]any{
					"permutation": p,
					"snippet":     "Simulated mention of " + p,
					"confidence":  0.45,
				},
			})
		}
	}
	if d.cfg.Rand.Float64() < 0.30 {
		out = append(out, model.SocialProfile{
			Platform: "GitHub",
			URL:      model.StringPtr("https://github.com/" + target),
			Status:   model.StatusFoundSimulated,
		})
	}
	return out
}
