package provider

import "errors"

// Registry errors.
var (
	// ErrNilProvider is returned when registering a nil provider.
	ErrNilProvider = errors.New("provider is nil")

	// ErrNoCapability is returned for providers that cannot collect anything,
	// such as a Func without a function or a provider without a name.
	ErrNoCapability = errors.New("provider has no collect capability")

	// ErrDuplicate is returned when a provider name is already registered.
	ErrDuplicate = errors.New("provider already registered")

	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("provider registry is frozen")
)
