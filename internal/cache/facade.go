package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultOpTimeout bounds every store call made through a Facade.
const DefaultOpTimeout = 2 * time.Second

// Facade is the engine's view of the cache. None of its methods fail:
// store errors and timeouts read as absence and writes are dropped, with the
// cause logged at debug level.
//
// A Facade with a nil store, and a nil *Facade, are valid disabled caches.
type Facade struct {
	store     Store
	opTimeout time.Duration
	logger    *slog.Logger
}

// Option configures a Facade.
type Option func(*Facade)

// WithOpTimeout sets the per-call timeout.
func WithOpTimeout(d time.Duration) Option {
	return func(f *Facade) {
		if d > 0 {
			f.opTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Facade) {
		f.logger = logger
	}
}

// New creates a Facade over store.
func New(store Store, opts ...Option) *Facade {
	f := &Facade{
		store:     store,
		opTimeout: DefaultOpTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Enabled reports whether the facade has a store behind it.
func (f *Facade) Enabled() bool {
	return f != nil && f.store != nil
}

// Get returns the value at key. Any failure is reported as absent.
func (f *Facade) Get(ctx context.Context, key string) ([]byte, bool) {
	if !f.Enabled() {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, f.opTimeout)
	defer cancel()

	value, err := f.store.Get(ctx, key)
	if err != nil {
		f.debug("cache get failed", key, err)
		return nil, false
	}
	return value, true
}

// Set stores value at key for ttl. Failures are logged and dropped.
func (f *Facade) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if !f.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, f.opTimeout)
	defer cancel()

	if err := f.store.Set(ctx, key, value, ttl); err != nil {
		f.debug("cache set failed", key, err)
	}
}

// RandomMember returns a random member of the set at setKey.
// Any failure, including an empty or missing set, is reported as absent.
func (f *Facade) RandomMember(ctx context.Context, setKey string) (string, bool) {
	if !f.Enabled() {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, f.opTimeout)
	defer cancel()

	member, err := f.store.RandomMember(ctx, setKey)
	if err != nil {
		f.debug("cache random member failed", setKey, err)
		return "", false
	}
	return member, true
}

// SeedMembers fills the set at setKey with members unless it already exists.
func (f *Facade) SeedMembers(ctx context.Context, setKey string, members []string, ttl time.Duration) {
	if !f.Enabled() || len(members) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, f.opTimeout)
	defer cancel()

	exists, err := f.store.Exists(ctx, setKey)
	if err != nil {
		f.debug("cache exists failed", setKey, err)
		return
	}
	if exists {
		return
	}
	if err := f.store.AddMembers(ctx, setKey, members, ttl); err != nil {
		f.debug("cache seed failed", setKey, err)
	}
}

// Close closes the underlying store.
func (f *Facade) Close() error {
	if !f.Enabled() {
		return nil
	}
	return f.store.Close()
}

func (f *Facade) debug(msg, key string, err error) {
	if errors.Is(err, ErrMiss) {
		f.logger.Debug("cache miss", "key", key)
		return
	}
	f.logger.Debug(msg, "key", key, "error", err)
}
