package httpx

import (
	"net/http"

	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/oxleyhq/apigate/pkg/authx"
	"github.com/oxleyhq/apigate/pkg/slogx"
)

// RequireScope gates a route on one scope. The decision is pure: no
// identity denies as UNAUTHORIZED, the admin sentinel always passes, and
// otherwise the identity must hold the scope by exact equality.
func RequireScope(scope string, respond apierr.Responder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity := IdentityFromContext(ctx)

			switch authx.Authorize(identity, scope) {
			case authx.Allow:
				next.ServeHTTP(w, r)

			case authx.DenyUnauthorized:
				writeUnauthorized(w, ctx, respond)

			case authx.DenyForbidden:
				slogx.FromContext(ctx).Warn("insufficient scope",
					"principal", identity.ID,
					"required_scope", scope,
				)
				w.Header().Set("WWW-Authenticate",
					`Bearer error="insufficient_scope", scope="`+scope+`"`)
				respond.Write(w, slogx.RequestIDFromContext(ctx),
					apierr.New(apierr.CodeForbidden, "insufficient scope"))
			}
		})
	}
}
