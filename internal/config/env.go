package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvFile           = "ENV_FILE"
	EnvBingAPIKey     = "BING_API_KEY"
	EnvBingEndpoint   = "BING_ENDPOINT"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvNVDAPIKey      = "NVD_API_KEY"
	EnvMaxBingResults = "MAX_BING_RESULTS"
	EnvMaxGitHubUsers = "MAX_GITHUB_USERS"
	EnvRedisAddress   = "REDIS_ADDRESS"
	EnvRedisPassword  = "REDIS_PASSWORD"
	EnvRedisDB        = "REDIS_DB"
)

// LoadEnvFiles loads .env files into the process environment without
// overriding variables that are already set. It reads the file named by
// ENV_FILE, then .env.local, then .env. Missing files are skipped.
func LoadEnvFiles() error {
	var files []string
	if custom := os.Getenv(EnvFile); custom != "" {
		files = append(files, custom)
	}
	files = append(files, ".env.local", ".env")

	for _, name := range files {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// ApplyEnv overlays credentials and Redis settings from the environment.
// getenv is usually os.Getenv. Empty variables are ignored; malformed
// numbers are reported.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString(&c.Credentials.BingAPIKey, getenv(EnvBingAPIKey))
	setString(&c.Credentials.BingEndpoint, getenv(EnvBingEndpoint))
	setString(&c.Credentials.GitHubToken, getenv(EnvGitHubToken))
	setString(&c.Credentials.NVDAPIKey, getenv(EnvNVDAPIKey))
	setString(&c.RedisAddress, getenv(EnvRedisAddress))
	setString(&c.RedisPassword, getenv(EnvRedisPassword))

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvMaxBingResults, &c.Credentials.MaxBingResults},
		{EnvMaxGitHubUsers, &c.Credentials.MaxGitHubUsers},
		{EnvRedisDB, &c.RedisDB},
	}
	for _, v := range ints {
		raw := getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, v.name, raw)
		}
		*v.dst = n
	}
	return nil
}
