package config

import "errors"

// Configuration validation errors returned by Validate and ValidateTargets.
var (
	// ErrNoTarget is returned when no target is specified.
	ErrNoTarget = errors.New("no target specified: provide a domain or username")

	// ErrInvalidTimeout is returned for a non-positive provider timeout or a
	// negative dispatch timeout or rate limit interval.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidTTL is returned when the cache TTL is not positive.
	ErrInvalidTTL = errors.New("invalid cache ttl: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCacheBackend is returned for an unknown cache backend.
	ErrInvalidCacheBackend = errors.New("invalid cache backend: must be auto, redis, sqlite or none")

	// ErrInvalidTorMode is returned for an unknown Tor mode.
	ErrInvalidTorMode = errors.New("invalid tor mode: must be off, external or embedded")

	// ErrInvalidLogFormat is returned for an unknown log format.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrUnknownProvider is returned when an unknown provider is enabled.
	ErrUnknownProvider = errors.New("unknown provider: must be one of domain, social, dork, nvd, deep")
)

// ErrInvalidEnv is returned when a numeric environment variable is malformed.
var ErrInvalidEnv = errors.New("invalid environment variable")
