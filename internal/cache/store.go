// Package cache provides the best-effort cache used by the engine for
// assembled reports and auxiliary pools such as rotating user agents.
//
// A Facade wraps a Store and swallows every store failure: a broken or
// unreachable store behaves exactly like an empty one. Stores are injected at
// construction and closed explicitly by their owner.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by stores when a key or set does not exist.
var ErrMiss = errors.New("cache miss")

// Store is a key/value engine with TTLs and string sets.
type Store interface {
	// Get returns the value stored at key or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// RandomMember returns a random member of the set at key or ErrMiss.
	RandomMember(ctx context.Context, key string) (string, error)

	// AddMembers adds members to the set at key and (re)sets its TTL.
	AddMembers(ctx context.Context, key string, members []string, ttl time.Duration) error

	// Exists reports whether key holds a live value or set.
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases the underlying connection.
	Close() error
}

// NopStore is a Store that holds nothing. It backs a disabled cache.
type NopStore struct{}

var _ Store = NopStore{}

// Get implements Store.
func (NopStore) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

// Set implements Store.
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

// RandomMember implements Store.
func (NopStore) RandomMember(context.Context, string) (string, error) { return "", ErrMiss }

// AddMembers implements Store.
func (NopStore) AddMembers(context.Context, string, []string, time.Duration) error { return nil }

// Exists implements Store.
func (NopStore) Exists(context.Context, string) (bool, error) { return false, nil }

// Close implements Store.
func (NopStore) Close() error { return nil }
