// Package source holds the built-in providers: domain registration (RDAP),
// social profile probing, simulated search-engine dorking, NVD CVE search
// and the composite deep search over Bing and GitHub.
//
// Providers share one *http.Client built by NewHTTPClient. Its transport
// sets a User-Agent drawn from the cache-backed pool on every request and
// may be routed through Tor by the caller.
package source
