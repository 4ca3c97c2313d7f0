package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nao1215/footprint/internal/provider"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticSource is a ProviderSource over a fixed slice.
type staticSource []provider.Provider

func (s staticSource) Providers() []provider.Provider {
	return s
}

// countingProvider wraps a provider function and counts invocations.
type countingProvider struct {
	name  string
	fn    func(ctx context.Context, target string) (provider.Result, error)
	calls atomic.Int32
}

func (p *countingProvider) Name() string { return p.name }

func (p *countingProvider) Collect(ctx context.Context, target string) (provider.Result, error) {
	p.calls.Add(1)
	return p.fn(ctx, target)
}

func returning(name string, result provider.Result) *countingProvider {
	return &countingProvider{
		name: name,
		fn: func(context.Context, string) (provider.Result, error) {
			return result, nil
		},
	}
}

func failing(name string, err error) *countingProvider {
	return &countingProvider{
		name: name,
		fn: func(context.Context, string) (provider.Result, error) {
			return provider.Empty(), err
		},
	}
}

// memoryCache is an in-memory Cache recording writes.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	ctxErrs []error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.ttls[key] = ttl
	c.ctxErrs = append(c.ctxErrs, ctx.Err())
}

func (c *memoryCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = []byte(value)
}

// recordingObserver counts observer events.
type recordingObserver struct {
	mu        sync.Mutex
	providers map[string]int
	cache     map[string]int
	analyses  map[string]int
	findings  map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		providers: make(map[string]int),
		cache:     make(map[string]int),
		analyses:  make(map[string]int),
		findings:  make(map[string]int),
	}
}

func (o *recordingObserver) ObserveProvider(name string, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.providers[name]++
}

func (o *recordingObserver) ObserveCache(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache[outcome]++
}

func (o *recordingObserver) ObserveAnalysis(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.analyses[result]++
}

func (o *recordingObserver) ObserveFindings(kind string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.findings[kind] += n
}
