package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/footprint/internal/model"
	"golang.org/x/sync/errgroup"
)

// Analyzer analyzes one target. *Engine implements it.
type Analyzer interface {
	Analyze(ctx context.Context, target string, opts ...AnalyzeOption) (*model.Report, error)
}

// BatchResult is the outcome of analyzing one target of a batch.
type BatchResult struct {
	// Target is the analyzed target.
	Target string

	// Report is nil when Err is set.
	Report *model.Report

	// Err is the analysis error for this target, if any.
	Err error
}

// BatchProcessor analyzes many targets with bounded concurrency.
// A failing target never cancels the others.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	analyzeOpts []AnalyzeOption
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithAnalyzeOptions sets the options passed to every Analyze call.
func WithAnalyzeOptions(opts ...AnalyzeOption) BatchOption {
	return func(b *BatchProcessor) {
		b.analyzeOpts = opts
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(analyzer Analyzer, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		analyzer:    analyzer,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch analyzes targets and returns one result per target in input
// order. The error is non-nil only when ctx was cancelled; targets that did
// not start carry the context error.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(r BatchResult, index int) {
		results[index] = r
	})
	return results, err
}

// ProcessBatchWithCallback analyzes targets and calls callback for each
// finished target with its index in targets. The callback runs on the worker
// goroutine and must be safe for concurrent use when it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(result BatchResult, index int),
) error {
	bp.logger.Info("starting batch analysis",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			// Check for cancellation before starting
			if err := gctx.Err(); err != nil {
				callback(BatchResult{Target: target, Err: err}, i)
				return err
			}

			report, err := bp.analyzer.Analyze(gctx, target, bp.analyzeOpts...)
			if err != nil {
				bp.logger.Warn("analysis failed", "target", target, "error", err)
			}
			callback(BatchResult{Target: target, Report: report, Err: err}, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch analysis complete",
		"total_targets", len(targets),
		"elapsed", time.Since(startTime),
	)
	return err
}
