package backend

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// loginLimiter keeps one token bucket per client IP address.
type loginLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*clientLimiter
	lastGC   time.Time
}

type clientLimiter struct {
	*rate.Limiter
	seen time.Time
}

const limiterIdle = 10 * time.Minute

// newLoginLimiter returns nil if limit or burst is not positive. A nil limiter allows everything.
func newLoginLimiter(limit rate.Limit, burst int) *loginLimiter {
	if limit <= 0 || burst <= 0 {
		return nil
	}
	return &loginLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
		lastGC:   time.Now(),
	}
}

func (l *loginLimiter) Allow(ip string) bool {

	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var now = time.Now()

	// forget idle clients, their buckets are full again anyway
	if now.Sub(l.lastGC) > limiterIdle {
		for key, c := range l.limiters {
			if now.Sub(c.seen) > limiterIdle {
				delete(l.limiters, key)
			}
		}
		l.lastGC = now
	}

	c, ok := l.limiters[ip]
	if !ok {
		c = &clientLimiter{
			Limiter: rate.NewLimiter(l.limit, l.burst),
		}
		l.limiters[ip] = c
	}
	c.seen = now
	return c.AllowN(now, 1)
}

// clientIP returns the host part of req.RemoteAddr. A reverse proxy should set RemoteAddr accordingly.
func clientIP(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
