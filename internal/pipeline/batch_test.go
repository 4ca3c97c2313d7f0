package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/footprint/internal/model"
)

// analyzerFunc adapts a function to Analyzer.
type analyzerFunc func(ctx context.Context, target string, opts ...AnalyzeOption) (*model.Report, error)

func (f analyzerFunc) Analyze(ctx context.Context, target string, opts ...AnalyzeOption) (*model.Report, error) {
	return f(ctx, target, opts...)
}

func echoAnalyzer(ctx context.Context, target string, _ ...AnalyzeOption) (*model.Report, error) {
	return model.NewReport(target), nil
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(analyzerFunc(echoAnalyzer))

		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.concurrency != 4 {
			t.Errorf("expected default concurrency 4, got %d", bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(analyzerFunc(echoAnalyzer), WithConcurrency(0))

		if bp.concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", bp.concurrency)
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("returns results in input order", func(t *testing.T) {
		t.Parallel()

		// Later targets finish first.
		slow := analyzerFunc(func(_ context.Context, target string, _ ...AnalyzeOption) (*model.Report, error) {
			if target == "first" {
				time.Sleep(20 * time.Millisecond)
			}
			return model.NewReport(target), nil
		})
		bp := NewBatchProcessor(slow, WithConcurrency(3), WithBatchLogger(discardLogger()))

		targets := []string{"first", "second", "third"}
		results, err := bp.ProcessBatch(context.Background(), targets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, r := range results {
			if r.Target != targets[i] || r.Report == nil || r.Report.Target != targets[i] {
				t.Errorf("result %d: unexpected %+v", i, r)
			}
		}
	})

	t.Run("records per-target errors without cancelling siblings", func(t *testing.T) {
		t.Parallel()

		var processed atomic.Int32
		analyzer := analyzerFunc(func(_ context.Context, target string, _ ...AnalyzeOption) (*model.Report, error) {
			processed.Add(1)
			if target == "ab" {
				return nil, ErrTargetTooShort
			}
			return model.NewReport(target), nil
		})
		bp := NewBatchProcessor(analyzer, WithConcurrency(1), WithBatchLogger(discardLogger()))

		results, err := bp.ProcessBatch(context.Background(), []string{"ab", "example.com", "username"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processed.Load() != 3 {
			t.Errorf("expected 3 analyses, got %d", processed.Load())
		}
		if !errors.Is(results[0].Err, ErrTargetTooShort) {
			t.Errorf("expected ErrTargetTooShort, got %v", results[0].Err)
		}
		if results[1].Err != nil || results[2].Err != nil {
			t.Errorf("unexpected sibling errors: %v, %v", results[1].Err, results[2].Err)
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		var mu sync.Mutex
		analyzer := analyzerFunc(func(_ context.Context, target string, _ ...AnalyzeOption) (*model.Report, error) {
			n := current.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return model.NewReport(target), nil
		})
		bp := NewBatchProcessor(analyzer, WithConcurrency(2), WithBatchLogger(discardLogger()))

		if _, err := bp.ProcessBatch(context.Background(), []string{"aaa", "bbb", "ccc", "ddd", "eee"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("expected at most 2 concurrent analyses, got %d", peak.Load())
		}
	})

	t.Run("passes analyze options", func(t *testing.T) {
		t.Parallel()

		var sawNoCache atomic.Bool
		analyzer := analyzerFunc(func(_ context.Context, target string, opts ...AnalyzeOption) (*model.Report, error) {
			var o analyzeOptions
			for _, opt := range opts {
				opt(&o)
			}
			sawNoCache.Store(o.noCache)
			return model.NewReport(target), nil
		})
		bp := NewBatchProcessor(analyzer, WithAnalyzeOptions(WithNoCache()), WithBatchLogger(discardLogger()))

		if _, err := bp.ProcessBatch(context.Background(), []string{"example"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !sawNoCache.Load() {
			t.Error("expected WithNoCache to be forwarded")
		}
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		bp := NewBatchProcessor(analyzerFunc(echoAnalyzer), WithConcurrency(1), WithBatchLogger(discardLogger()))
		results, err := bp.ProcessBatch(ctx, []string{"aaa", "bbb"})

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		for i, r := range results {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("result %d: expected context.Canceled, got %v", i, r.Err)
			}
		}
	})
}

// TestBatchProcessorWithEngine tests batch analysis through a real engine.
func TestBatchProcessorWithEngine(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(fourProviders(), WithCache(newMemoryCache()))
	bp := NewBatchProcessor(engine, WithBatchLogger(discardLogger()))

	results, err := bp.ProcessBatch(context.Background(), []string{"example.com", "example.com", "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Err != nil || results[1].Err != nil {
		t.Errorf("unexpected errors: %v, %v", results[0].Err, results[1].Err)
	}
	if !errors.Is(results[2].Err, ErrTargetTooShort) {
		t.Errorf("expected ErrTargetTooShort, got %v", results[2].Err)
	}
}
