// Package authx holds the request-boundary authentication primitives:
// extracting exactly one credential from a request's headers, the resolved
// Identity type, and the scope-based authorization decision.
package authx

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// Credential is the discriminated result of header extraction. Exactly one
// concrete type comes back per request: None, Bearer, APIKey, or Basic.
type Credential interface {
	credential()
}

// None means the request carried no usable credential.
type None struct{}

// Bearer carries the raw token from "Authorization: Bearer <token>".
type Bearer struct {
	Token string
}

// APIKey carries the raw key from the X-API-Key header.
type APIKey struct {
	Key string
}

// Basic carries the decoded username/password pair from
// "Authorization: Basic <base64(user:pass)>".
type Basic struct {
	Username string
	Password string
}

func (None) credential()   {}
func (Bearer) credential() {}
func (APIKey) credential() {}
func (Basic) credential()  {}

// FromHeader resolves the single credential of a request under strict
// priority: Bearer beats X-API-Key beats Basic. Lower-priority headers that
// are also present are ignored outright, neither merged nor rejected.
// A malformed Basic value (bad base64, no colon) yields None.
func FromHeader(h http.Header) Credential {
	authz := h.Get("Authorization")

	if token, ok := strings.CutPrefix(authz, "Bearer "); ok {
		if token = strings.TrimSpace(token); token != "" {
			return Bearer{Token: token}
		}
	}

	if key := strings.TrimSpace(h.Get("X-API-Key")); key != "" {
		return APIKey{Key: key}
	}

	if encoded, ok := strings.CutPrefix(authz, "Basic "); ok {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return None{}
		}
		user, pass, ok := strings.Cut(string(raw), ":")
		if !ok || user == "" {
			return None{}
		}
		return Basic{Username: user, Password: pass}
	}

	return None{}
}
