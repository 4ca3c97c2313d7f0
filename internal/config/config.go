package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "footprint"

	// DefaultCacheTTL matches the lifetime of a cached report.
	DefaultCacheTTL = time.Hour

	// DefaultCacheBackend picks Redis when reachable and SQLite otherwise.
	DefaultCacheBackend = BackendAuto

	// DefaultRedisAddress is the standard local Redis address.
	DefaultRedisAddress = "127.0.0.1:6379"

	// DefaultProviderTimeout bounds each outbound provider HTTP request.
	DefaultProviderTimeout = 15 * time.Second

	// DefaultBatchSize is the number of targets analyzed concurrently.
	DefaultBatchSize = 4

	// DefaultListenAddress is the HTTP listen address of `footprint serve`.
	DefaultListenAddress = ":8080"

	// DefaultRateLimitInterval is the minimum interval between two requests
	// from the same client IP.
	DefaultRateLimitInterval = 3 * time.Second

	// DefaultBingEndpoint is the Bing Web Search API endpoint.
	DefaultBingEndpoint = "https://api.bing.microsoft.com/v7.0/search"

	// DefaultMaxBingResults caps the number of Bing results per target.
	DefaultMaxBingResults = 6

	// DefaultMaxGitHubUsers caps the number of GitHub users per target.
	DefaultMaxGitHubUsers = 5

	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultTorStartupTimeout bounds the embedded Tor bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Cache backends.
const (
	BackendAuto   = "auto"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Tor modes for provider traffic.
const (
	TorOff      = "off"
	TorExternal = "external"
	TorEmbedded = "embedded"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// AllProviders lists every built-in provider in registration order.
var AllProviders = []string{"domain", "social", "dork", "nvd", "deep"}

// Credentials holds API keys and limits for providers that talk to
// third-party APIs. They are read from the environment.
type Credentials struct {
	BingAPIKey     string
	BingEndpoint   string
	GitHubToken    string
	NVDAPIKey      string
	MaxBingResults int
	MaxGitHubUsers int
}

// Config holds all configuration options for footprint.
// It is populated from defaults, the config file, the environment and CLI
// flags, in that order, and passed down explicitly.
type Config struct {
	// Targets is the list of domains or usernames to analyze.
	Targets []string

	// Providers lists enabled provider names. Empty means all.
	Providers []string

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path. Empty means stdout.
	ReportFile string

	// NoCache skips the cache lookup (fresh reports are still stored).
	NoCache bool

	// BatchSize is the number of targets analyzed concurrently.
	BatchSize int

	// CacheBackend is one of auto, redis, sqlite or none.
	CacheBackend string

	// CacheTTL is the lifetime of cached reports.
	CacheTTL time.Duration

	// CacheDir holds the SQLite cache database.
	CacheDir string

	// Redis connection settings.
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// ProviderTimeout bounds each outbound provider HTTP request.
	ProviderTimeout time.Duration

	// DispatchTimeout bounds each provider call centrally. Zero disables it.
	DispatchTimeout time.Duration

	// ListenAddress is the HTTP listen address for serve.
	ListenAddress string

	// RateLimitInterval is the minimum interval between requests per client IP.
	// Zero disables rate limiting.
	RateLimitInterval time.Duration

	// TorMode routes provider traffic: off, external or embedded.
	TorMode string

	// TorProxyAddress is the external Tor SOCKS5 proxy address.
	TorProxyAddress string

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// Credentials for third-party APIs.
	Credentials Credentials

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		LogFormat:         LogFormatText,
		BatchSize:         DefaultBatchSize,
		CacheBackend:      DefaultCacheBackend,
		CacheTTL:          DefaultCacheTTL,
		CacheDir:          XDGCacheDir(),
		RedisAddress:      DefaultRedisAddress,
		ProviderTimeout:   DefaultProviderTimeout,
		ListenAddress:     DefaultListenAddress,
		RateLimitInterval: DefaultRateLimitInterval,
		TorMode:           TorOff,
		TorProxyAddress:   DefaultTorProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		Credentials: Credentials{
			BingEndpoint:   DefaultBingEndpoint,
			MaxBingResults: DefaultMaxBingResults,
			MaxGitHubUsers: DefaultMaxGitHubUsers,
		},
	}
}

// XDGCacheDir returns the XDG cache directory for footprint.
// On Linux: ~/.cache/footprint
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// XDGConfigDir returns the XDG config directory for footprint.
// On Linux: ~/.config/footprint
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// EnabledProviders returns the enabled provider names in registration order.
func (c *Config) EnabledProviders() []string {
	if len(c.Providers) == 0 {
		return append([]string(nil), AllProviders...)
	}
	enabled := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		enabled[p] = true
	}
	out := make([]string, 0, len(c.Providers))
	for _, p := range AllProviders {
		if enabled[p] {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks settings shared by every command.
// It returns the first problem found.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.CacheTTL <= 0 {
		return ErrInvalidTTL
	}
	if c.ProviderTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.DispatchTimeout < 0 || c.RateLimitInterval < 0 {
		return ErrInvalidTimeout
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	switch c.CacheBackend {
	case BackendAuto, BackendRedis, BackendSQLite, BackendNone:
	default:
		return ErrInvalidCacheBackend
	}
	switch c.TorMode {
	case TorOff, TorExternal, TorEmbedded:
	default:
		return ErrInvalidTorMode
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return ErrInvalidLogFormat
	}
	known := make(map[string]bool, len(AllProviders))
	for _, p := range AllProviders {
		known[p] = true
	}
	for _, p := range c.Providers {
		if !known[p] {
			return ErrUnknownProvider
		}
	}
	return nil
}

// ValidateTargets checks that at least one target was given.
func (c *Config) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	return nil
}
