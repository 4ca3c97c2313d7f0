package provider

import (
	"context"

	"github.com/nao1215/footprint/internal/model"
)

// Provider is an intelligence source queried for every analyzed target.
//
// Collect may block on network I/O and must honor ctx cancellation.
// A returned error marks the whole provider as failed for this target;
// the engine logs it and carries on with the other providers.
type Provider interface {
	// Name returns a stable identifier used in logs and metrics.
	Name() string

	// Collect gathers evidence about target.
	Collect(ctx context.Context, target string) (Result, error)
}

// Func adapts a plain function to the Provider interface.
type Func struct {
	name string
	fn   func(ctx context.Context, target string) (Result, error)
}

// NewFunc returns a Provider named name backed by fn.
func NewFunc(name string, fn func(ctx context.Context, target string) (Result, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Name implements Provider.
func (f *Func) Name() string {
	return f.name
}

// Collect implements Provider.
func (f *Func) Collect(ctx context.Context, target string) (Result, error) {
	if f.fn == nil {
		return Empty(), ErrNoCapability
	}
	return f.fn(ctx, target)
}

// Result is what a provider returns: one record, a batch, or nothing.
// The zero value is an empty result.
type Result struct {
	single  model.Record
	batch   []model.Record
	isBatch bool
}

// Single wraps one record.
func Single(r model.Record) Result {
	return Result{single: r}
}

// Batch wraps an ordered sequence of records. An empty batch is valid.
func Batch(records ...model.Record) Result {
	if records == nil {
		records = []model.Record{}
	}
	return Result{batch: records, isBatch: true}
}

// BatchOf converts a typed finding slice into a batch result.
func BatchOf[F model.Finding](findings []F) Result {
	records := make([]model.Record, len(findings))
	for i, f := range findings {
		records[i] = f
	}
	return Batch(records...)
}

// Empty returns a result carrying nothing.
func Empty() Result {
	return Result{}
}

// IsBatch reports whether the result carries a sequence of records.
func (r Result) IsBatch() bool {
	return r.isBatch
}

// IsEmpty reports whether the result carries neither a record nor a batch.
func (r Result) IsEmpty() bool {
	return !r.isBatch && r.single == nil
}

// Record returns the single record, or nil for batch and empty results.
func (r Result) Record() model.Record {
	return r.single
}

// Records returns the batch, or nil for single and empty results.
func (r Result) Records() []model.Record {
	return r.batch
}

// Len returns the number of records carried by the result.
func (r Result) Len() int {
	switch {
	case r.isBatch:
		return len(r.batch)
	case r.single != nil:
		return 1
	default:
		return 0
	}
}
