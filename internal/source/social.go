package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/provider"
)

// minUsernameLength is the shortest username worth probing; shorter ones
// are reported not found.
const minUsernameLength = 4

// Platform is a social platform probed by profile URL.
type Platform struct {
	// Name is the display name, e.g. "GitHub".
	Name string

	// BaseURL is the profile URL prefix; the username is appended after "/".
	BaseURL string
}

// DefaultPlatforms are probed in this order.
var DefaultPlatforms = []Platform{
	{Name: "Twitter/X", BaseURL: "https://twitter.com"},
	{Name: "LinkedIn", BaseURL: "https://linkedin.com/in"},
	{Name: "GitHub", BaseURL: "https://github.com"},
	{Name: "Instagram", BaseURL: "https://instagram.com"},
	{Name: "Reddit", BaseURL: "https://reddit.com/user"},
}

// SocialConfig configures the social provider.
type SocialConfig struct {
	Client    *http.Client
	Platforms []Platform
	Logger    *slog.Logger
}

// Social probes profile URLs on each platform.
type Social struct {
	client    *http.Client
	platforms []Platform
	logger    *slog.Logger
}

// NewSocial creates the social provider.
func NewSocial(cfg SocialConfig) *Social {
	s := &Social{platforms: cfg.Platforms, logger: cfg.Logger}
	if s.platforms == nil {
		s.platforms = DefaultPlatforms
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	base := cfg.Client
	if base == nil {
		base = http.DefaultClient
	}
	// A redirect usually lands on a login or search page, not the profile.
	client := *base
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	s.client = &client
	return s
}

// Name implements provider.Provider.
func (s *Social) Name() string { return "social" }

// Collect implements provider.Provider. It reports one profile per platform
// in platform order. Probe failures read as not found.
func (s *Social) Collect(ctx context.Context, target string) (provider.Result, error) {
	profiles := make([]model.SocialProfile, len(s.platforms))
	for i, p := range s.platforms {
		profiles[i] = model.SocialProfile{Platform: p.Name, Status: model.StatusNotFoundOrPrivate}
	}
	if utf8.RuneCountInString(target) < minUsernameLength {
		return provider.BatchOf(profiles), nil
	}

	var g errgroup.Group
	for i, p := range s.platforms {
		profileURL := p.BaseURL + "/" + url.PathEscape(target)
		g.Go(func() error {
			if s.exists(ctx, profileURL) {
				profiles[i].URL = model.StringPtr(profileURL)
				profiles[i].Status = model.StatusFound
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes never fail

	return provider.BatchOf(profiles), nil
}

func (s *Social) exists(ctx context.Context, profileURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("profile probe failed", "url", profileURL, "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize)) //nolint:errcheck // drain for reuse

	return resp.StatusCode == http.StatusOK
}
