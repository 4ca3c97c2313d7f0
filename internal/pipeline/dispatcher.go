package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/footprint/internal/provider"
	"golang.org/x/sync/errgroup"
)

// ProviderSource supplies the ordered providers to fan out to.
// *provider.Registry implements it.
type ProviderSource interface {
	Providers() []provider.Provider
}

// Outcome is the settled result of one provider invocation.
type Outcome struct {
	// Provider is the provider name.
	Provider string

	// Result is what the provider returned. It is empty when Err is set.
	Result provider.Result

	// Err is the provider failure, including recovered panics and timeouts.
	Err error

	// Duration is the wall time spent in the provider.
	Duration time.Duration
}

// Failed reports whether the provider failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Dispatcher fans a target out to every registered provider concurrently
// and waits for all of them to settle.
type Dispatcher struct {
	source   ProviderSource
	timeout  time.Duration
	logger   *slog.Logger
	observer Observer
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithProviderTimeout bounds every provider call. Zero means no deadline
// beyond the caller's context.
func WithProviderTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d >= 0 {
			disp.timeout = d
		}
	}
}

// WithDispatcherLogger sets the dispatcher logger.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.logger = logger
	}
}

// WithDispatcherObserver sets the observer notified after each provider call.
func WithDispatcherObserver(o Observer) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.observer = o
	}
}

// NewDispatcher creates a dispatcher over source.
func NewDispatcher(source ProviderSource, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{source: source}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.observer == nil {
		d.observer = nopObserver{}
	}
	return d
}

// Run invokes every provider with target and returns their outcomes in
// registration order, regardless of completion order.
//
// All providers are launched before any is awaited and a failing provider
// never cancels its siblings. Run returns ErrNoProviders when there is
// nothing to dispatch to; provider failures are reported in the outcomes.
func (d *Dispatcher) Run(ctx context.Context, target string) ([]Outcome, error) {
	var providers []provider.Provider
	if d.source != nil {
		providers = d.source.Providers()
	}
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	d.logger.Debug("dispatching", "target", target, "providers", len(providers))

	// Each task writes only its own slot.
	outcomes := make([]Outcome, len(providers))

	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			outcomes[i] = d.invoke(ctx, p, target)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // tasks never return errors

	return outcomes, nil
}

// invoke calls one provider, converting panics into failures.
func (d *Dispatcher) invoke(ctx context.Context, p provider.Provider, target string) (out Outcome) {
	out.Provider = p.Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			out.Result = provider.Empty()
			out.Err = fmt.Errorf("%w: %s: %v", ErrProviderPanic, out.Provider, r)
		}
		out.Duration = time.Since(start)
		d.observer.ObserveProvider(out.Provider, out.Duration, out.Err)
	}()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	result, err := p.Collect(ctx, target)
	if err != nil {
		out.Result = provider.Empty()
		out.Err = fmt.Errorf("%s: %w", out.Provider, err)
		return out
	}
	out.Result = result
	d.logger.Debug("provider finished", "provider", out.Provider, "records", result.Len())
	return out
}
