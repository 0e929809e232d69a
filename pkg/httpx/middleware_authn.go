package httpx

import (
	"context"
	"net/http"

	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/oxleyhq/apigate/pkg/authx"
	"github.com/oxleyhq/apigate/pkg/slogx"
	"github.com/oxleyhq/apigate/pkg/tokenx"
)

// APIKeyValidator resolves a raw X-API-Key value to an identity. This is
// the only lookup on the decision path allowed to touch a store, and it
// completes before rate limiting starts.
type APIKeyValidator interface {
	ValidateAPIKey(ctx context.Context, key string) (*authx.Identity, error)
}

// BasicValidator resolves a username/password pair to an identity.
type BasicValidator interface {
	ValidateBasic(ctx context.Context, username, password string) (*authx.Identity, error)
}

// Auth bundles the credential resolvers for the authentication middleware.
// Nil Keys or Users disables that credential kind.
type Auth struct {
	// Secret signs and verifies bearer tokens; read-only for the process
	// lifetime.
	Secret []byte

	Keys  APIKeyValidator
	Users BasicValidator

	Respond apierr.Responder
}

// Authenticate resolves the request's single credential (Bearer beats
// X-API-Key beats Basic) into an identity and stores it in the context.
// Any failure is a uniform UNAUTHORIZED: callers and probers learn that
// authentication failed, never which stage rejected it.
func (a Auth) Authenticate() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			var (
				identity *authx.Identity
				err      error
			)

			switch cred := authx.FromHeader(r.Header).(type) {
			case authx.Bearer:
				var claims tokenx.Claims
				if claims, err = tokenx.Verify(cred.Token, a.Secret); err == nil {
					identity = authx.FromClaims(claims)
				}

			case authx.APIKey:
				if a.Keys != nil {
					identity, err = a.Keys.ValidateAPIKey(ctx, cred.Key)
				}

			case authx.Basic:
				if a.Users != nil {
					identity, err = a.Users.ValidateBasic(ctx, cred.Username, cred.Password)
				}
			}

			if identity == nil {
				if err != nil {
					log.Warn("authentication failed", "err", err)
				}
				writeUnauthorized(w, ctx, a.Respond)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, identity)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, ctx context.Context, respond apierr.Responder) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	respond.Write(w, slogx.RequestIDFromContext(ctx),
		apierr.New(apierr.CodeUnauthorized, "missing or invalid credential"))
}
