package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".footprint"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the on-disk YAML configuration.
//
// Example:
//
//	providers: [domain, social, deep]
//	cache:
//	  backend: sqlite
//	  ttl: 30m
//	server:
//	  listen: ":9090"
//	  rate_limit: 3s
type File struct {
	Providers []string   `yaml:"providers"`
	Cache     FileCache  `yaml:"cache"`
	Server    FileServer `yaml:"server"`
	Tor       FileTor    `yaml:"tor"`
	Limits    FileLimits `yaml:"limits"`
	Log       FileLog    `yaml:"log"`
}

// FileCache holds cache settings.
type FileCache struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	Dir     string        `yaml:"dir"`
	Redis   FileRedis     `yaml:"redis"`
}

// FileRedis holds Redis connection settings.
type FileRedis struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// FileServer holds HTTP server settings.
type FileServer struct {
	Listen    string         `yaml:"listen"`
	RateLimit *time.Duration `yaml:"rate_limit"`
}

// FileTor holds Tor routing settings.
type FileTor struct {
	Mode           string        `yaml:"mode"`
	Proxy          string        `yaml:"proxy"`
	StartupTimeout time.Duration `yaml:"startup_timeout"`
}

// FileLimits holds provider limits.
type FileLimits struct {
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`
	BatchSize       int           `yaml:"batch_size"`
	MaxBingResults  int           `yaml:"max_bing_results"`
	MaxGitHubUsers  int           `yaml:"max_github_users"`
}

// FileLog holds logging settings.
type FileLog struct {
	Format string `yaml:"format"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .footprint in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .footprint in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ApplyFile overlays the non-zero settings of f onto c.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	if len(f.Providers) > 0 {
		c.Providers = append([]string(nil), f.Providers...)
	}

	setString(&c.CacheBackend, f.Cache.Backend)
	setDuration(&c.CacheTTL, f.Cache.TTL)
	setString(&c.CacheDir, f.Cache.Dir)
	setString(&c.RedisAddress, f.Cache.Redis.Address)
	setString(&c.RedisPassword, f.Cache.Redis.Password)
	setInt(&c.RedisDB, f.Cache.Redis.DB)

	setString(&c.ListenAddress, f.Server.Listen)
	if f.Server.RateLimit != nil {
		// Explicit zero disables rate limiting.
		c.RateLimitInterval = *f.Server.RateLimit
	}

	setString(&c.TorMode, f.Tor.Mode)
	setString(&c.TorProxyAddress, f.Tor.Proxy)
	setDuration(&c.TorStartupTimeout, f.Tor.StartupTimeout)

	setDuration(&c.ProviderTimeout, f.Limits.ProviderTimeout)
	setDuration(&c.DispatchTimeout, f.Limits.DispatchTimeout)
	setInt(&c.BatchSize, f.Limits.BatchSize)
	setInt(&c.Credentials.MaxBingResults, f.Limits.MaxBingResults)
	setInt(&c.Credentials.MaxGitHubUsers, f.Limits.MaxGitHubUsers)

	setString(&c.LogFormat, f.Log.Format)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
