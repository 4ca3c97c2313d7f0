package tor

import (
	"context"
	"errors"
	"net"
	"testing"
)

// TestOpenOff tests that the off mode leaves the default transport.
func TestOpenOff(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"", ModeOff} {
		route, err := Open(context.Background(), RouteOptions{Mode: mode})
		if err != nil {
			t.Fatalf("mode %q: unexpected error: %v", mode, err)
		}
		if route.Enabled() || route.Transport() != nil {
			t.Errorf("mode %q: expected routing to be off", mode)
		}
		if err := route.Close(); err != nil {
			t.Errorf("mode %q: unexpected close error: %v", mode, err)
		}
	}
}

// TestOpenExternal tests the external proxy mode.
func TestOpenExternal(t *testing.T) {
	t.Parallel()

	t.Run("working proxy", func(t *testing.T) {
		t.Parallel()

		addr := mockProxy(t, func(conn net.Conn) {
			_, _ = conn.Read(make([]byte, 3))
			_, _ = conn.Write([]byte{0x05, 0x00})
			_, _ = conn.Read(make([]byte, 256))
			_, _ = conn.Write([]byte{0x05, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		})

		route, err := Open(context.Background(), RouteOptions{Mode: ModeExternal, ProxyAddress: addr})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !route.Enabled() || route.Transport() == nil {
			t.Error("expected routing to be on")
		}
	})

	t.Run("not a socks proxy", func(t *testing.T) {
		t.Parallel()

		addr := mockProxy(t, func(conn net.Conn) {
			_, _ = conn.Read(make([]byte, 3))
			_, _ = conn.Write([]byte("HTTP/1.1 400 Bad Request\r\n\r\n"))
		})

		_, err := Open(context.Background(), RouteOptions{Mode: ModeExternal, ProxyAddress: addr})
		if !errors.Is(err, ErrProxyNotTor) {
			t.Errorf("expected ErrProxyNotTor, got %v", err)
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		t.Parallel()

		_, err := Open(context.Background(), RouteOptions{Mode: ModeExternal, ProxyAddress: "nope"})
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}

// TestOpenUnknownMode tests rejection of unknown modes.
func TestOpenUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), RouteOptions{Mode: "bridge"})
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("expected ErrUnknownMode, got %v", err)
	}
}

// TestNilRoute tests that a nil route is inert.
func TestNilRoute(t *testing.T) {
	t.Parallel()

	var route *Route
	if route.Enabled() || route.Transport() != nil || route.Close() != nil {
		t.Error("expected nil route to be inert")
	}
}
