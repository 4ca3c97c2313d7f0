package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/nao1215/footprint/internal/cache"
)

// UserAgentsKey is the cache set holding the User-Agent pool.
const UserAgentsKey = "osint:user_agents"

// UserAgentsTTL is the lifetime of a seeded User-Agent pool.
const UserAgentsTTL = time.Hour

// maxBodySize caps provider response bodies.
const maxBodySize = 4 << 20

// FallbackUserAgents seed the pool and are used when the cache is unavailable.
var FallbackUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/116.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_0) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Safari/605.1.15",
	"curl/7.85.0",
	"Mozilla/5.0 (compatible; footprint/1.0)",
}

var (
	// ErrNotFound is returned by getJSON for a 404 response.
	ErrNotFound = errors.New("resource not found")

	// ErrUnexpectedStatus is returned by getJSON for any other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// Rand is the randomness used by simulated providers.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// DefaultRand uses the goroutine-safe top-level math/rand/v2 source.
var DefaultRand Rand = globalRand{}

// UserAgentPool hands out User-Agent strings from the cache set at
// UserAgentsKey, seeding it with FallbackUserAgents when it is missing.
type UserAgentPool struct {
	cache *cache.Facade
	rand  Rand
}

// NewUserAgentPool creates a pool over c. A nil or disabled facade makes
// the pool pick from FallbackUserAgents.
func NewUserAgentPool(c *cache.Facade, r Rand) *UserAgentPool {
	if r == nil {
		r = DefaultRand
	}
	return &UserAgentPool{cache: c, rand: r}
}

// Pick returns a User-Agent.
func (p *UserAgentPool) Pick(ctx context.Context) string {
	if p.cache.Enabled() {
		p.cache.SeedMembers(ctx, UserAgentsKey, FallbackUserAgents, UserAgentsTTL)
		if ua, ok := p.cache.RandomMember(ctx, UserAgentsKey); ok && ua != "" {
			return ua
		}
	}
	return FallbackUserAgents[p.rand.IntN(len(FallbackUserAgents))]
}

type userAgentTransport struct {
	base  http.RoundTripper
	agent func(ctx context.Context) string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.agent(req.Context()))
	}
	return t.base.RoundTrip(clone)
}

// ClientOptions configures NewHTTPClient.
type ClientOptions struct {
	// Timeout bounds each request. Zero means no client timeout.
	Timeout time.Duration

	// Transport is the base transport, e.g. a Tor route. Nil means
	// http.DefaultTransport.
	Transport http.RoundTripper

	// UserAgents supplies the User-Agent header. Nil means the fallback pool.
	UserAgents *UserAgentPool
}

// NewHTTPClient builds the client shared by providers.
func NewHTTPClient(opts ClientOptions) *http.Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	pool := opts.UserAgents
	if pool == nil {
		pool = NewUserAgentPool(nil, nil)
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: &userAgentTransport{base: base, agent: pool.Pick},
	}
}

// getJSON GETs url with header and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize)) //nolint:errcheck // drain for reuse
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize)) //nolint:errcheck // drain for reuse
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
