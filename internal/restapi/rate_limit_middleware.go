package restapi

import (
	"math"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/canvasstrack/voterroll/internal/utils"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware throttles each client to a token bucket. Authenticated
// callers are keyed by user id, anonymous ones by address.
type RateLimitMiddleware struct {
	limit   rate.Limit
	burst   int
	proxies []netip.Prefix

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRateLimitMiddleware allows requestsPerInterval requests per interval for
// every client. A non-positive rate disables limiting.
func NewRateLimitMiddleware(requestsPerInterval int, interval time.Duration) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		limiters: make(map[string]*clientLimiter),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	if requestsPerInterval > 0 && interval > 0 {
		m.limit = rate.Limit(float64(requestsPerInterval) / interval.Seconds())
		m.burst = requestsPerInterval
	} else {
		m.limit = rate.Inf
	}

	go m.sweep()
	return m
}

func (m *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.limit == rate.Inf {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lim := m.limiterFor(m.clientKey(r))
			reservation := lim.Reserve()
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *RateLimitMiddleware) limiterFor(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	cl, ok := m.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[key] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (m *RateLimitMiddleware) sweep() {
	defer close(m.done)

	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.evictIdle(now)
		}
	}
}

// evictIdle drops limiters of clients not seen for limiterIdleTTL.
func (m *RateLimitMiddleware) evictIdle(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, cl := range m.limiters {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(m.limiters, key)
		}
	}
}

// Stop ends the background sweep. It is idempotent.
func (m *RateLimitMiddleware) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
}

// TrustProxies lets the listed reverse proxies name the client through
// X-Forwarded-For. It must be called before the handler serves requests.
func (m *RateLimitMiddleware) TrustProxies(proxies []netip.Prefix) *RateLimitMiddleware {
	m.proxies = proxies
	return m
}

func (m *RateLimitMiddleware) clientKey(r *http.Request) string {
	if identity, ok := IdentityFromContext(r.Context()); ok {
		return "user:" + identity.UserID
	}
	return "ip:" + utils.ClientIP(r, m.proxies)
}
