package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/oxleyhq/apigate/internal/gateway/service"
	"github.com/oxleyhq/apigate/internal/gateway/store"
	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/oxleyhq/apigate/pkg/httpx"
	"github.com/oxleyhq/apigate/pkg/ratex"
	"github.com/oxleyhq/apigate/pkg/slogx"
)

// ScopeKeysManage guards the API-key management endpoints. The admin
// scope bypasses it like any other scope check.
const ScopeKeysManage = "keys:manage"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	secret    []byte
	startTime time.Time
	logger    *slog.Logger

	store   store.Store
	limiter *ratex.Limiter
	respond apierr.Responder

	Credentials *service.CredentialService
	Tokens      *service.TokenService
}

func NewRouter(
	secret []byte,
	st store.Store,
	limiter *ratex.Limiter,
	respond apierr.Responder,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		secret:    secret,
		startTime: time.Now(),
		store:     st,
		limiter:   limiter,
		respond:   respond,
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAPIKeys()
	r.registerWhoami()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// auth bundles the credential resolvers for protected routes.
func (r *Router) auth() httpx.Auth {
	return httpx.Auth{
		Secret:  r.secret,
		Keys:    r.Credentials,
		Users:   r.Credentials,
		Respond: r.respond,
	}
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{
		Credentials: r.Credentials,
		Tokens:      r.Tokens,
		Respond:     r.respond,
	}
	refreshHandler := &RefreshHandler{Tokens: r.Tokens, Respond: r.respond}
	introspectHandler := &IntrospectHandler{Tokens: r.Tokens, Respond: r.respond}

	// Credential endpoints get the strict per-IP throttle on top of
	// nothing else: there is no identity yet to key the sliding window on.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.ThrottleByIP(httpx.StrictThrottle, r.respond),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.ThrottleByIP(httpx.StrictThrottle, r.respond),
		),
	)

	// Introspection never verifies, so it stays unauthenticated; the
	// sliding window keys it by client IP.
	r.Mux.Handle("GET /v1/auth/introspect",
		httpx.Chain(introspectHandler,
			httpx.RateLimit(r.limiter, r.respond),
		),
	)
}

func (r *Router) registerWhoami() {
	h := &WhoamiHandler{Respond: r.respond}

	r.Mux.Handle("GET /v1/whoami",
		httpx.Chain(h,
			r.auth().Authenticate(),
			httpx.RateLimit(r.limiter, r.respond),
		),
	)
}

func (r *Router) registerAPIKeys() {
	h := &APIKeysHandler{Credentials: r.Credentials, Respond: r.respond}

	secured := func(handler http.Handler) http.Handler {
		return httpx.Chain(handler,
			r.auth().Authenticate(),
			httpx.RequireScope(ScopeKeysManage, r.respond),
			httpx.RateLimit(r.limiter, r.respond),
		)
	}

	r.Mux.Handle("POST /v1/apikeys", secured(http.HandlerFunc(h.HandleCreate)))
	r.Mux.Handle("GET /v1/apikeys", secured(http.HandlerFunc(h.HandleList)))
	r.Mux.Handle("DELETE /v1/apikeys/{id}", secured(http.HandlerFunc(h.HandleRevoke)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /healthz", HealthzHandler(r.startTime, r.store))
}
