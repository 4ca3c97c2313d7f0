package pipeline

import "time"

// Cache lookup outcomes reported to Observer.ObserveCache.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheCorrupt = "corrupt"
)

// Analysis results reported to Observer.ObserveAnalysis.
const (
	AnalysisLive   = "live"
	AnalysisCached = "cached"
	AnalysisError  = "error"
)

// Observer receives engine events. *metrics.Metrics implements it.
type Observer interface {
	ObserveProvider(name string, d time.Duration, err error)
	ObserveCache(outcome string)
	ObserveAnalysis(result string)
	ObserveFindings(kind string, n int)
}

type nopObserver struct{}

func (nopObserver) ObserveProvider(string, time.Duration, error) {}
func (nopObserver) ObserveCache(string)                          {}
func (nopObserver) ObserveAnalysis(string)                       {}
func (nopObserver) ObserveFindings(string, int)                  {}
