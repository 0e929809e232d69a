package httpx

import (
	"net/http"
	"strconv"

	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/oxleyhq/apigate/pkg/authx"
	"github.com/oxleyhq/apigate/pkg/ratex"
	"github.com/oxleyhq/apigate/pkg/slogx"
	"github.com/oxleyhq/apigate/pkg/tokenx"
)

// RateLimitKey resolves the single limiter key for a request: an API-key
// principal beats a user principal beats the client IP.
func RateLimitKey(r *http.Request, identity *authx.Identity) string {
	switch {
	case identity != nil && identity.Type == tokenx.TypeAPIKey:
		return "key:" + identity.ID
	case identity != nil:
		return "user:" + identity.ID
	default:
		return "ip:" + ClientIP(r)
	}
}

// RateLimit applies the sliding-window limiter and emits the rate-limit
// headers on every decision, allowed or denied. Run it after
// authentication so the key reflects the resolved identity, and keep it
// last before the handler: nothing may suspend between its check and its
// count.
func RateLimit(limiter *ratex.Limiter, respond apierr.Responder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := RateLimitKey(r, IdentityFromContext(ctx))

			d := limiter.Allow(key)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.UnixMilli(), 10))

			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(d.RetryAfter))

				slogx.FromContext(ctx).Warn("rate limit exceeded",
					"key", key,
					"retry_after", d.RetryAfter,
				)
				respond.Write(w, slogx.RequestIDFromContext(ctx),
					apierr.New(apierr.CodeRateLimited, "too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
