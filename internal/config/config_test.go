package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults should be intentional, so each one is pinned here.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default CacheTTL is one hour", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheTTL != time.Hour {
			t.Errorf("expected CacheTTL to be 1h, got %v", cfg.CacheTTL)
		}
	})

	t.Run("default CacheBackend is auto", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheBackend != BackendAuto {
			t.Errorf("expected CacheBackend to be auto, got %q", cfg.CacheBackend)
		}
	})

	t.Run("default RateLimitInterval is 3 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.RateLimitInterval != 3*time.Second {
			t.Errorf("expected RateLimitInterval to be 3s, got %v", cfg.RateLimitInterval)
		}
	})

	t.Run("default provider limits", func(t *testing.T) {
		t.Parallel()
		if cfg.Credentials.MaxBingResults != 6 {
			t.Errorf("expected MaxBingResults to be 6, got %d", cfg.Credentials.MaxBingResults)
		}
		if cfg.Credentials.MaxGitHubUsers != 5 {
			t.Errorf("expected MaxGitHubUsers to be 5, got %d", cfg.Credentials.MaxGitHubUsers)
		}
		if cfg.Credentials.BingEndpoint != DefaultBingEndpoint {
			t.Errorf("unexpected BingEndpoint %q", cfg.Credentials.BingEndpoint)
		}
	})

	t.Run("default Tor is off", func(t *testing.T) {
		t.Parallel()
		if cfg.TorMode != TorOff {
			t.Errorf("expected TorMode to be off, got %q", cfg.TorMode)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, want: ErrInvalidBatchSize},
		{name: "zero ttl", modify: func(c *Config) { c.CacheTTL = 0 }, want: ErrInvalidTTL},
		{name: "zero provider timeout", modify: func(c *Config) { c.ProviderTimeout = 0 }, want: ErrInvalidTimeout},
		{name: "negative dispatch timeout", modify: func(c *Config) { c.DispatchTimeout = -time.Second }, want: ErrInvalidTimeout},
		{name: "zero rate limit is allowed", modify: func(c *Config) { c.RateLimitInterval = 0 }},
		{
			name:   "json and markdown",
			modify: func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			want:   ErrConflictingReportFormats,
		},
		{name: "unknown backend", modify: func(c *Config) { c.CacheBackend = "memcached" }, want: ErrInvalidCacheBackend},
		{name: "unknown tor mode", modify: func(c *Config) { c.TorMode = "bridge" }, want: ErrInvalidTorMode},
		{name: "unknown log format", modify: func(c *Config) { c.LogFormat = "xml" }, want: ErrInvalidLogFormat},
		{name: "unknown provider", modify: func(c *Config) { c.Providers = []string{"shodan"} }, want: ErrUnknownProvider},
		{name: "known providers", modify: func(c *Config) { c.Providers = []string{"deep", "domain"} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.want == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

// TestValidateTargets tests that analysis requires a target.
func TestValidateTargets(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if !errors.Is(cfg.ValidateTargets(), ErrNoTarget) {
		t.Error("expected ErrNoTarget for empty targets")
	}
	cfg.Targets = []string{"example.com"}
	if err := cfg.ValidateTargets(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestEnabledProviders tests that providers keep registration order.
func TestEnabledProviders(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if got := cfg.EnabledProviders(); !reflect.DeepEqual(got, AllProviders) {
		t.Errorf("expected all providers, got %v", got)
	}

	cfg.Providers = []string{"deep", "domain", "deep"}
	want := []string{"domain", "deep"}
	if got := cfg.EnabledProviders(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// TestLoadConfigFile tests YAML parsing and overlaying onto defaults.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("providers: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("overlay", func(t *testing.T) {
		t.Parallel()

		content := `
providers: [domain, deep]
cache:
  backend: sqlite
  ttl: 30m
  redis:
    address: redis:6379
    db: 2
server:
  listen: ":9090"
  rate_limit: 0s
tor:
  mode: external
limits:
  provider_timeout: 5s
  batch_size: 8
  max_bing_results: 10
log:
  format: json
`
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		cfg.ApplyFile(f)

		if !reflect.DeepEqual(cfg.Providers, []string{"domain", "deep"}) {
			t.Errorf("unexpected providers %v", cfg.Providers)
		}
		if cfg.CacheBackend != BackendSQLite || cfg.CacheTTL != 30*time.Minute {
			t.Errorf("unexpected cache settings %q %v", cfg.CacheBackend, cfg.CacheTTL)
		}
		if cfg.RedisAddress != "redis:6379" || cfg.RedisDB != 2 {
			t.Errorf("unexpected redis settings %q %d", cfg.RedisAddress, cfg.RedisDB)
		}
		if cfg.ListenAddress != ":9090" {
			t.Errorf("unexpected listen address %q", cfg.ListenAddress)
		}
		if cfg.RateLimitInterval != 0 {
			t.Errorf("expected explicit zero rate limit, got %v", cfg.RateLimitInterval)
		}
		if cfg.TorMode != TorExternal {
			t.Errorf("unexpected tor mode %q", cfg.TorMode)
		}
		if cfg.ProviderTimeout != 5*time.Second || cfg.BatchSize != 8 {
			t.Errorf("unexpected limits %v %d", cfg.ProviderTimeout, cfg.BatchSize)
		}
		if cfg.Credentials.MaxBingResults != 10 || cfg.Credentials.MaxGitHubUsers != DefaultMaxGitHubUsers {
			t.Errorf("unexpected credential limits %+v", cfg.Credentials)
		}
		if cfg.LogFormat != LogFormatJSON {
			t.Errorf("unexpected log format %q", cfg.LogFormat)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("nil file is ignored", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplyFile(nil)
		if !reflect.DeepEqual(cfg, NewConfig()) {
			t.Error("expected config to be unchanged")
		}
	})
}

// TestFindConfigFile tests explicit config path resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := FindConfigFile(path); got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
	if got := FindConfigFile(path + ".missing"); got != "" {
		t.Errorf("expected empty path, got %q", got)
	}
}

// TestApplyEnv tests reading credentials from the environment.
func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	t.Run("credentials and limits", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		err := cfg.ApplyEnv(env(map[string]string{
			EnvBingAPIKey:     "bing-key",
			EnvGitHubToken:    "ghp_token",
			EnvMaxGitHubUsers: "3",
			EnvRedisAddress:   "cache:6379",
			EnvRedisDB:        "1",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		creds := cfg.Credentials
		if creds.BingAPIKey != "bing-key" || creds.GitHubToken != "ghp_token" {
			t.Errorf("unexpected credentials %+v", creds)
		}
		if creds.BingEndpoint != DefaultBingEndpoint {
			t.Errorf("expected default endpoint, got %q", creds.BingEndpoint)
		}
		if creds.MaxGitHubUsers != 3 || creds.MaxBingResults != DefaultMaxBingResults {
			t.Errorf("unexpected limits %+v", creds)
		}
		if cfg.RedisAddress != "cache:6379" || cfg.RedisDB != 1 {
			t.Errorf("unexpected redis settings %q %d", cfg.RedisAddress, cfg.RedisDB)
		}
	})

	t.Run("malformed number", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		err := cfg.ApplyEnv(env(map[string]string{EnvMaxBingResults: "six"}))
		if !errors.Is(err, ErrInvalidEnv) {
			t.Errorf("expected ErrInvalidEnv, got %v", err)
		}
	})
}

// TestLoadEnvFiles tests loading a custom env file without overriding
// variables that are already set.
func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.env")
	content := "FOOTPRINT_TEST_NEW=from-file\nFOOTPRINT_TEST_SET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Chdir(dir)
	t.Setenv(EnvFile, path)
	t.Setenv("FOOTPRINT_TEST_SET", "from-env")
	t.Setenv("FOOTPRINT_TEST_NEW", "")
	if err := os.Unsetenv("FOOTPRINT_TEST_NEW"); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnvFiles(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("FOOTPRINT_TEST_NEW"); got != "from-file" {
		t.Errorf("expected from-file, got %q", got)
	}
	if got := os.Getenv("FOOTPRINT_TEST_SET"); got != "from-env" {
		t.Errorf("expected existing variable to win, got %q", got)
	}
}

// TestXDGDirs tests that XDG directories end with the app name.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGCacheDir()) != AppName {
		t.Errorf("unexpected cache dir %q", XDGCacheDir())
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("unexpected config dir %q", XDGConfigDir())
	}
}
