package server

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleMultiple is how many intervals a client may stay silent before its
// limiter is forgotten.
const idleMultiple = 20

// ClientLimiter allows one request per interval for each client key.
type ClientLimiter struct {
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientEntry
	lastSweep time.Time
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientLimiter creates a limiter allowing one request per interval per
// client. A non-positive interval disables limiting and returns nil.
func NewClientLimiter(interval time.Duration) *ClientLimiter {
	if interval <= 0 {
		return nil
	}
	return &ClientLimiter{
		interval: interval,
		now:      time.Now,
		clients:  make(map[string]*clientEntry),
	}
}

// Allow reports whether key may make a request now. A nil limiter allows
// everything.
func (l *ClientLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	entry, ok := l.clients[key]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(rate.Every(l.interval), 1)}
		l.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (l *ClientLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// sweep drops idle clients. Callers hold mu.
func (l *ClientLimiter) sweep(now time.Time) {
	idle := l.interval * idleMultiple
	if now.Sub(l.lastSweep) < idle {
		return
	}
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) >= idle {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// clientKey identifies the caller by the first X-Forwarded-For entry, or by
// the connection's remote address when the header is absent.
func clientKey(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return c.RemoteIP()
}
