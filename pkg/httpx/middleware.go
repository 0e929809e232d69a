// Package httpx provides the gateway's HTTP boundary toolkit: the
// middleware chain that runs credential extraction, token verification,
// scope authorization, and rate limiting ahead of business handlers, plus
// shared response helpers.
package httpx

import "net/http"

// Middleware wraps a handler with boundary behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first argument is outermost, i.e.
// Chain(h, a, b) serves a(b(h)).
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
