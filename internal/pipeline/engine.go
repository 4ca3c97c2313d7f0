package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/nao1215/footprint/internal/model"
)

// DefaultCacheTTL is how long an assembled report stays cached.
const DefaultCacheTTL = time.Hour

// cacheKeyPrefix namespaces report entries in the cache.
const cacheKeyPrefix = "report:"

// CacheKey returns the cache key of the report for target.
func CacheKey(target string) string {
	return cacheKeyPrefix + target
}

// Cache is the best-effort store consulted before and populated after an
// analysis. Implementations never fail: errors read as misses and writes
// are fire-and-forget. *cache.Facade implements it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Engine runs the read-through analysis:
//
//	CHECK_CACHE -> SERVE_CACHED
//	            -> DISPATCH -> CLASSIFY -> ASSEMBLE -> STORE
type Engine struct {
	dispatcher *Dispatcher
	classifier *Classifier
	cache      Cache
	ttl        time.Duration
	logger     *slog.Logger
	observer   Observer
	now        func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache sets the report cache. Without one every analysis is live.
func WithCache(c Cache) EngineOption {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithCacheTTL sets the lifetime of cached reports.
func WithCacheTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) {
		if ttl > 0 {
			e.ttl = ttl
		}
	}
}

// WithLogger sets the logger for the engine and the components it creates.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver sets the observer notified of engine events.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithDispatcher replaces the default dispatcher.
func WithDispatcher(d *Dispatcher) EngineOption {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithClassifier replaces the default classifier.
func WithClassifier(c *Classifier) EngineOption {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine dispatching to source.
func NewEngine(source ProviderSource, opts ...EngineOption) *Engine {
	e := &Engine{ttl: DefaultCacheTTL}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.dispatcher == nil {
		e.dispatcher = NewDispatcher(source,
			WithDispatcherLogger(e.logger),
			WithDispatcherObserver(e.observer),
		)
	}
	if e.classifier == nil {
		e.classifier = NewClassifier(WithClassifierLogger(e.logger))
	}
	return e
}

// analyzeOptions are per-call settings.
type analyzeOptions struct {
	noCache bool
}

// AnalyzeOption configures a single Analyze call.
type AnalyzeOption func(*analyzeOptions)

// WithNoCache skips the cache lookup. The fresh report is still stored.
func WithNoCache() AnalyzeOption {
	return func(o *analyzeOptions) {
		o.noCache = true
	}
}

// Analyze returns the report for target, from the cache when a valid entry
// exists and from a live fan-out otherwise.
//
// Targets shorter than MinTargetLength characters fail with
// ErrTargetTooShort before any provider runs. ErrNoProviders is returned on
// a cache miss with nothing to dispatch to. Provider and cache failures
// never fail the analysis, but a ctx that ends before the providers return
// does: the report would only hold the providers that beat the
// cancellation, so it is neither returned nor cached.
func (e *Engine) Analyze(ctx context.Context, target string, opts ...AnalyzeOption) (*model.Report, error) {
	var o analyzeOptions
	for _, opt := range opts {
		opt(&o)
	}

	if utf8.RuneCountInString(target) < MinTargetLength {
		e.observer.ObserveAnalysis(AnalysisError)
		return nil, fmt.Errorf("%w: %q", ErrTargetTooShort, target)
	}

	key := CacheKey(target)

	if e.cache != nil && !o.noCache {
		if report, ok := e.lookup(ctx, key); ok {
			e.observer.ObserveAnalysis(AnalysisCached)
			return report, nil
		}
	}

	report, err := e.live(ctx, target)
	if err != nil {
		e.observer.ObserveAnalysis(AnalysisError)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		e.logger.Debug("analysis abandoned, not caching", "target", target, "error", err)
		e.observer.ObserveAnalysis(AnalysisError)
		return nil, fmt.Errorf("analysis of %q abandoned: %w", target, err)
	}

	e.store(ctx, key, report)
	e.observer.ObserveAnalysis(AnalysisLive)
	return report, nil
}

// lookup is CHECK_CACHE and SERVE_CACHED. A corrupt entry counts as a miss.
func (e *Engine) lookup(ctx context.Context, key string) (*model.Report, bool) {
	data, ok := e.cache.Get(ctx, key)
	if !ok {
		e.observer.ObserveCache(CacheMiss)
		return nil, false
	}

	report, err := model.DecodeReport(data)
	if err != nil {
		e.logger.Warn("ignoring corrupt cache entry", "key", key, "error", err)
		e.observer.ObserveCache(CacheCorrupt)
		return nil, false
	}

	e.observer.ObserveCache(CacheHit)
	report.IsCached = true
	report.Timestamp = Timestamp(e.now(), model.ProvenanceCached)
	e.logger.Debug("serving cached report", "key", key)
	return report, true
}

// live is DISPATCH, CLASSIFY and ASSEMBLE.
func (e *Engine) live(ctx context.Context, target string) (*model.Report, error) {
	outcomes, err := e.dispatcher.Run(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("dispatch %q: %w", target, err)
	}

	buckets := e.classifier.Classify(outcomes)
	report := Assemble(target, buckets, e.now())

	counts := make(map[model.Kind]int)
	for _, f := range report.Findings() {
		counts[f.Kind()]++
	}
	for kind, n := range counts {
		e.observer.ObserveFindings(kind.String(), n)
	}

	e.logger.Info("analysis complete",
		"target", target,
		"social", len(report.SocialMediaHits),
		"vulnerabilities", len(report.VulnerabilityHits),
		"web", len(report.WebSearchData),
	)
	return report, nil
}

// store is STORE. The write is detached from ctx so a caller leaving after
// a complete fan-out does not lose the entry.
func (e *Engine) store(ctx context.Context, key string, report *model.Report) {
	if e.cache == nil {
		return
	}
	data, err := report.Encode()
	if err != nil {
		e.logger.Warn("failed to encode report for cache", "key", key, "error", err)
		return
	}
	e.cache.Set(context.WithoutCancel(ctx), key, data, e.ttl)
}
