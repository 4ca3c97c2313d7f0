// Package tor routes outbound provider traffic through Tor.
//
// A Route is opened from the configured mode: "off" leaves the default
// transport in place, "external" dials a running Tor SOCKS5 proxy and
// "embedded" starts a private Tor daemon with tornago and dials that.
// Routing only changes how the HTTP transport connects; providers are
// unaware of it.
package tor
