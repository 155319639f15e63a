package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"vetchat/relay/pkg/proxy"
	"vetchat/relay/pkg/proxy/types"
)

// MessageRateLimited is the error body for locally throttled requests.
const MessageRateLimited = "Too many requests"

// RateLimitConfig contains token bucket settings per client address.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate.
	RequestsPerSecond float64

	// Burst is the bucket size.
	Burst int

	// IdleTTL evicts limiters for clients not seen for this long.
	IdleTTL time.Duration

	// OnLimited is called for every rejected request.
	OnLimited func(r *http.Request)
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client address.
type RateLimiter struct {
	config RateLimitConfig

	mu      sync.Mutex
	clients map[string]*clientLimiter
	now     func() time.Time
}

// NewRateLimiter creates a per-client limiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	return &RateLimiter{
		config:  cfg,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Allow reports whether a request from key may proceed now. Stale entries
// are swept on the way.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for k, c := range rl.clients {
		if now.Sub(c.lastSeen) > rl.config.IdleTTL {
			delete(rl.clients, k)
		}
	}

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Clients returns the number of tracked client addresses.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// RateLimitMiddleware rejects requests over the per-client rate with 429.
// Preflight requests are never throttled.
//
// Example usage:
//
//	limiter := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 2, Burst: 5})
//	handler = RateLimitMiddleware(limiter)(handler)
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	retryAfter := "1"
	if rl.config.RequestsPerSecond > 0 && rl.config.RequestsPerSecond < 1 {
		retryAfter = strconv.Itoa(int(1/rl.config.RequestsPerSecond + 0.5))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || rl.Allow(clientKey(r)) {
				next.ServeHTTP(w, r)
				return
			}

			if rl.config.OnLimited != nil {
				rl.config.OnLimited(r)
			}
			w.Header().Set("Retry-After", retryAfter)
			_ = proxy.WriteJSONResponse(w, http.StatusTooManyRequests, types.ErrorBody{
				Error:  MessageRateLimited,
				Status: http.StatusTooManyRequests,
			})
		})
	}
}

// clientKey identifies the caller by remote host.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
