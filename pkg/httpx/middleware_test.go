package httpx_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oxleyhq/apigate/pkg/apierr"
	"github.com/oxleyhq/apigate/pkg/authx"
	"github.com/oxleyhq/apigate/pkg/httpx"
	"github.com/oxleyhq/apigate/pkg/ratex"
	"github.com/oxleyhq/apigate/pkg/tokenx"
	"github.com/stretchr/testify/require"
)

var secret = []byte("secret123")

type stubKeys struct {
	identity *authx.Identity
	gotKey   string
}

func (s *stubKeys) ValidateAPIKey(_ context.Context, key string) (*authx.Identity, error) {
	s.gotKey = key
	if s.identity == nil {
		return nil, errors.New("unknown key")
	}
	return s.identity, nil
}

type stubUsers struct {
	identity *authx.Identity
}

func (s *stubUsers) ValidateBasic(_ context.Context, _, _ string) (*authx.Identity, error) {
	if s.identity == nil {
		return nil, errors.New("bad credentials")
	}
	return s.identity, nil
}

// identityEcho records the identity the middleware resolved.
func identityEcho(got **authx.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = httpx.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	auth := httpx.Auth{Secret: secret}

	t.Run("valid bearer resolves identity", func(t *testing.T) {
		token, err := tokenx.NewUserToken("user1", []string{"chat"}, secret, "1h")
		require.NoError(t, err)

		var got *authx.Identity
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		httpx.Chain(identityEcho(&got), auth.Authenticate()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, got)
		require.Equal(t, "user1", got.ID)
		require.Equal(t, tokenx.TypeUser, got.Type)
	})

	t.Run("failures are uniform 401s", func(t *testing.T) {
		expired := func() string {
			payload, err := tokenx.EncodeSegment(tokenx.Claims{
				Subject: "user1", Type: tokenx.TypeUser,
				IssuedAt:  time.Now().Unix() - 7200,
				ExpiresAt: time.Now().Unix() - 3600,
			})
			require.NoError(t, err)
			header, err := tokenx.EncodeSegment(map[string]string{"alg": "HS256", "typ": "JWT"})
			require.NoError(t, err)
			input := header + "." + payload
			return input + "." + tokenx.Sign(input, secret)
		}()

		wrongSecret, err := tokenx.NewUserToken("user1", nil, []byte("other"), "1h")
		require.NoError(t, err)

		for name, header := range map[string]string{
			"no credential":      "",
			"malformed token":    "Bearer garbage",
			"wrong secret":       "Bearer " + wrongSecret,
			"expired token":      "Bearer " + expired,
			"unsupported scheme": "Digest abc",
		} {
			t.Run(name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/", nil)
				if header != "" {
					req.Header.Set("Authorization", header)
				}
				rec := httptest.NewRecorder()

				var got *authx.Identity
				httpx.Chain(identityEcho(&got), auth.Authenticate()).ServeHTTP(rec, req)

				require.Equal(t, http.StatusUnauthorized, rec.Code)
				require.Nil(t, got)
				require.Contains(t, rec.Body.String(), "UNAUTHORIZED")
				require.Contains(t, rec.Body.String(), "missing or invalid credential")
			})
		}
	})

	t.Run("api key resolves through validator", func(t *testing.T) {
		keys := &stubKeys{identity: &authx.Identity{
			ID: "key_01", Scopes: []string{"chat"}, Type: tokenx.TypeAPIKey,
		}}
		auth := httpx.Auth{Secret: secret, Keys: keys}

		var got *authx.Identity
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "gw_raw_key")
		rec := httptest.NewRecorder()

		httpx.Chain(identityEcho(&got), auth.Authenticate()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "gw_raw_key", keys.gotKey)
		require.Equal(t, "key_01", got.ID)
	})

	t.Run("bearer wins over api key", func(t *testing.T) {
		token, err := tokenx.NewUserToken("user1", []string{"chat"}, secret, "1h")
		require.NoError(t, err)

		keys := &stubKeys{identity: &authx.Identity{ID: "key_01", Type: tokenx.TypeAPIKey}}
		auth := httpx.Auth{Secret: secret, Keys: keys}

		var got *authx.Identity
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-API-Key", "gw_raw_key")
		rec := httptest.NewRecorder()

		httpx.Chain(identityEcho(&got), auth.Authenticate()).ServeHTTP(rec, req)

		require.Equal(t, "user1", got.ID)
		require.Empty(t, keys.gotKey, "api key must not be consulted when a bearer is present")
	})

	t.Run("basic resolves through validator", func(t *testing.T) {
		users := &stubUsers{identity: &authx.Identity{ID: "user2", Type: tokenx.TypeUser}}
		auth := httpx.Auth{Secret: secret, Users: users}

		var got *authx.Identity
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization",
			"Basic "+base64.StdEncoding.EncodeToString([]byte("alice:pw")))
		rec := httptest.NewRecorder()

		httpx.Chain(identityEcho(&got), auth.Authenticate()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "user2", got.ID)
	})

	t.Run("disabled validator rejects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "gw_raw_key")
		rec := httptest.NewRecorder()

		var got *authx.Identity
		httpx.Chain(identityEcho(&got), auth.Authenticate()).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireScope(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	respond := apierr.Responder{}

	serve := func(identity *authx.Identity, scope string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if identity != nil {
			req = req.WithContext(httpx.ContextWithIdentity(req.Context(), identity))
		}
		rec := httptest.NewRecorder()
		httpx.Chain(ok, httpx.RequireScope(scope, respond)).ServeHTTP(rec, req)
		return rec
	}

	t.Run("scope held", func(t *testing.T) {
		rec := serve(&authx.Identity{ID: "u1", Scopes: []string{"chat"}}, "chat")
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("admin bypass", func(t *testing.T) {
		rec := serve(&authx.Identity{ID: "u2", Scopes: []string{"admin"}}, "tools:execute")
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing scope", func(t *testing.T) {
		rec := serve(&authx.Identity{ID: "u1", Scopes: []string{"chat"}}, "admin")
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "FORBIDDEN")
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "insufficient_scope")
	})

	t.Run("no identity", func(t *testing.T) {
		rec := serve(nil, "chat")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("headers on every decision", func(t *testing.T) {
		limiter := ratex.New(ratex.NewMemoryStore(), 2, time.Minute)
		handler := httpx.Chain(ok, httpx.RateLimit(limiter, apierr.Responder{}))

		send := func() *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.9:4711"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec
		}

		rec := send()
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
		require.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
		require.Empty(t, rec.Header().Get("Retry-After"))

		send()

		rec = send()
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Contains(t, rec.Body.String(), "RATE_LIMITED")
	})

	t.Run("keyed by identity not ip", func(t *testing.T) {
		limiter := ratex.New(ratex.NewMemoryStore(), 1, time.Minute)
		handler := httpx.Chain(ok, httpx.RateLimit(limiter, apierr.Responder{}))

		send := func(ip string, identity *authx.Identity) int {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = ip + ":1234"
			if identity != nil {
				req = req.WithContext(httpx.ContextWithIdentity(req.Context(), identity))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec.Code
		}

		user := &authx.Identity{ID: "u1", Type: tokenx.TypeUser}
		require.Equal(t, http.StatusNoContent, send("10.0.0.1", user))
		// Same user from another address shares the budget.
		require.Equal(t, http.StatusTooManyRequests, send("10.0.0.2", user))
		// Anonymous traffic from the first address has its own budget.
		require.Equal(t, http.StatusNoContent, send("10.0.0.1", nil))
	})
}

func TestRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4711"

	require.Equal(t, "ip:203.0.113.9", httpx.RateLimitKey(req, nil))
	require.Equal(t, "user:u1",
		httpx.RateLimitKey(req, &authx.Identity{ID: "u1", Type: tokenx.TypeUser}))
	require.Equal(t, "key:k1",
		httpx.RateLimitKey(req, &authx.Identity{ID: "k1", Type: tokenx.TypeAPIKey}))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4711"
	require.Equal(t, "203.0.113.9", httpx.ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	require.Equal(t, "198.51.100.7", httpx.ClientIP(req))

	req.Header.Set("X-Forwarded-For", "192.0.2.1, 198.51.100.7")
	require.Equal(t, "192.0.2.1", httpx.ClientIP(req))
}

func TestThrottleByIP(t *testing.T) {
	cfg := httpx.ThrottleConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
		httpx.ThrottleByIP(cfg, apierr.Responder{}),
	)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = ip + ":9999"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusNoContent, send("10.1.1.1").Code)
	require.Equal(t, http.StatusNoContent, send("10.1.1.1").Code)

	rec := send("10.1.1.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other addresses are unaffected.
	require.Equal(t, http.StatusNoContent, send("10.2.2.2").Code)
}
