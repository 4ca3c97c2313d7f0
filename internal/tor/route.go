package tor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Routing modes.
const (
	ModeOff      = "off"
	ModeExternal = "external"
	ModeEmbedded = "embedded"
)

// RouteOptions configures Open.
type RouteOptions struct {
	Mode           string
	ProxyAddress   string
	StartupTimeout time.Duration
	Logger         *slog.Logger
}

// Route is an opened routing mode. The zero Route routes nothing.
type Route struct {
	client   *Client
	embedded *EmbeddedTor
}

// Open sets up routing for opts.Mode. In external mode the proxy is checked
// before use; in embedded mode a daemon is started. Close releases it.
func Open(ctx context.Context, opts RouteOptions) (*Route, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Mode {
	case "", ModeOff:
		return &Route{}, nil

	case ModeExternal:
		client, err := NewClient(opts.ProxyAddress)
		if err != nil {
			return nil, err
		}
		if err := client.CheckConnection(ctx).Err(); err != nil {
			return nil, fmt.Errorf("tor proxy %s: %w", opts.ProxyAddress, err)
		}
		logger.Info("routing provider traffic through Tor", "proxy", opts.ProxyAddress)
		return &Route{client: client}, nil

	case ModeEmbedded:
		embedded := NewEmbeddedTor(WithStartupTimeout(opts.StartupTimeout))
		logger.Info("starting embedded Tor daemon", "timeout", opts.StartupTimeout)
		if err := embedded.Start(ctx); err != nil {
			return nil, err
		}
		client, err := embedded.NewClient()
		if err != nil {
			return nil, errors.Join(err, embedded.Stop())
		}
		logger.Info("embedded Tor daemon ready", "socks", embedded.SocksAddr())
		return &Route{client: client, embedded: embedded}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
	}
}

// Enabled reports whether traffic is routed through Tor.
func (r *Route) Enabled() bool {
	return r != nil && r.client != nil
}

// Transport returns the transport for provider clients, or nil when
// routing is off and the default transport applies.
func (r *Route) Transport() http.RoundTripper {
	if !r.Enabled() {
		return nil
	}
	return r.client.Transport()
}

// Close stops the embedded daemon, if any.
func (r *Route) Close() error {
	if r == nil || r.embedded == nil {
		return nil
	}
	return r.embedded.Stop()
}
