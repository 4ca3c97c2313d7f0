package pipeline

import "errors"

// MinTargetLength is the minimum number of characters in an analyzed target.
const MinTargetLength = 3

var (
	// ErrNoProviders is returned when the dispatcher has nothing to fan out
	// to. It indicates a configuration error, not a runtime failure.
	ErrNoProviders = errors.New("no providers registered")

	// ErrTargetTooShort is returned for targets shorter than MinTargetLength.
	// The check happens before any provider is invoked.
	ErrTargetTooShort = errors.New("target must be at least 3 characters long")

	// ErrProviderPanic wraps a panic recovered from a provider.
	ErrProviderPanic = errors.New("provider panicked")
)
