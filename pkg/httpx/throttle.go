package httpx

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/oxleyhq/apigate/pkg/slogx"
	"golang.org/x/time/rate"
)

// ThrottleConfig shapes the credential-endpoint throttle. This is a
// brute-force brake on login and refresh, separate from the per-identity
// sliding-window limiter that guards authenticated traffic.
type ThrottleConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// StrictThrottle is the default for credential endpoints: 5 attempts per
// minute per IP, all available as a burst.
var StrictThrottle = ThrottleConfig{
	RequestsPerWindow: 5,
	Window:            time.Minute,
	Burst:             5,
}

type throttle struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (t *throttle) limiterFor(ip string) *rate.Limiter {
	if l, ok := t.limiters.Load(ip); ok {
		return l.(*rate.Limiter)
	}
	l, _ := t.limiters.LoadOrStore(ip, rate.NewLimiter(t.rate, t.burst))
	t.maybeCleanup()
	return l.(*rate.Limiter)
}

// maybeCleanup drops idle per-IP limiters every few minutes. A limiter
// back at full burst has not been used for at least a window.
func (t *throttle) maybeCleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Since(t.lastCleanup) < 5*time.Minute {
		return
	}
	t.lastCleanup = time.Now()

	t.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(t.burst) {
			t.limiters.Delete(key)
		}
		return true
	})
}

// ThrottleByIP rate-limits per client IP with a token bucket. Use it on
// endpoints that accept credentials in the request body, where no identity
// exists yet and brute force is the threat.
func ThrottleByIP(cfg ThrottleConfig, respond apierr.Responder) Middleware {
	t := &throttle{
		rate:        rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := ClientIP(r)

			limiter := t.limiterFor(ip)
			if !limiter.Allow() {
				// Peek at the next token without consuming it.
				res := limiter.Reserve()
				delay := res.Delay()
				res.Cancel()

				retryAfter := max(int(delay.Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				slogx.FromContext(ctx).Warn("login throttle tripped",
					"ip", ip,
					"path", r.URL.Path,
				)
				respond.Write(w, slogx.RequestIDFromContext(ctx),
					apierr.New(apierr.CodeRateLimited, "too many attempts, slow down"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
