package handler

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// securityHeaders are set on every response. The API only serves JSON, so
// the CSP allows nothing to load and nothing to frame it.
var securityHeaders = [][2]string{
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Strict-Transport-Security", "max-age=63072000; includeSubDomains"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"X-XSS-Protection", "0"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
}

// SecurityHeaders adds securityHeaders to every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}

const (
	rateWindow        = time.Minute
	rateSweepInterval = 5 * time.Minute
)

// RateLimiter caps requests per client IP over a sliding one-minute window.
type RateLimiter struct {
	limit   int
	proxies int
	now     func() time.Time

	mu   sync.Mutex
	hits map[string][]time.Time // oldest first

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows maxPerMinute requests per client. trustedProxyCount
// is the number of reverse proxies that append to X-Forwarded-For; zero
// ignores the header. Close stops the background sweep.
func NewRateLimiter(maxPerMinute, trustedProxyCount int) *RateLimiter {
	rl := newRateLimiter(maxPerMinute, trustedProxyCount, time.Now)
	go rl.sweepEvery(rateSweepInterval)
	return rl
}

func newRateLimiter(limit, proxies int, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		proxies: proxies,
		now:     now,
		hits:    make(map[string][]time.Time),
		stop:    make(chan struct{}),
	}
}

// Close stops the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Middleware rejects over-limit requests with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.take(clientIP(r, rl.proxies))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(wait)))
			writeJSON(w, http.StatusTooManyRequests, contactResponse{Message: msgRateLimited})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// take records a hit for ip. When the window is full it records nothing and
// returns how long until the oldest hit leaves the window.
func (rl *RateLimiter) take(ip string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	ts := recent(rl.hits[ip], now.Add(-rateWindow))
	if len(ts) >= rl.limit {
		rl.hits[ip] = ts
		return false, ts[0].Add(rateWindow).Sub(now)
	}
	rl.hits[ip] = append(ts, now)
	return true, 0
}

// sweep forgets clients with no hits inside the window.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rateWindow)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, ts := range rl.hits {
		if ts = recent(ts, cutoff); len(ts) == 0 {
			delete(rl.hits, ip)
		} else {
			rl.hits[ip] = ts
		}
	}
}

func (rl *RateLimiter) sweepEvery(d time.Duration) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// recent drops hits at or before cutoff, reusing ts's backing array.
func recent(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return ts[:copy(ts, ts[i:])]
}

func retrySeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// clientIP identifies the caller. Behind trusted proxies it is the
// X-Forwarded-For entry appended by the outermost one; anything further left
// is client-supplied.
func clientIP(r *http.Request, proxies int) string {
	if proxies > 0 {
		if values := r.Header.Values("X-Forwarded-For"); len(values) > 0 {
			parts := strings.Split(strings.Join(values, ","), ",")
			if i := len(parts) - proxies; i >= 0 {
				if ip := strings.TrimSpace(parts[i]); ip != "" {
					return ip
				}
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
