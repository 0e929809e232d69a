package tokenx

import "time"

// TokenType discriminates what kind of principal a token was minted for.
type TokenType string

const (
	// TypeUser marks tokens minted for an interactive user login.
	TypeUser TokenType = "user"

	// TypeAPIKey marks tokens minted on behalf of an API key.
	TypeAPIKey TokenType = "api_key"
)

// Claims is the token payload. IssuedAt/ExpiresAt are unix seconds and are
// set by Generate; ExpiresAt is the sole authority on validity lifetime.
type Claims struct {
	// Subject is the principal the token was issued to (user or key ID).
	Subject string `json:"sub"`

	// Scopes are the permission strings granted to the principal.
	Scopes []string `json:"scopes"`

	// Type discriminates user tokens from API-key tokens.
	Type TokenType `json:"type"`

	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}

// UnverifiedClaims are claims read from a token WITHOUT checking its
// signature. They answer "what does this token claim", never "is this token
// valid": anyone holding a token string can read these, secret or not.
//
// The distinct type is deliberate. Identity resolution only accepts Claims
// returned by Verify, so an unverified decode cannot leak into an
// authorization decision. Use this for display, debugging, and claimed-TTL
// introspection only.
type UnverifiedClaims struct {
	Subject   string    `json:"sub"`
	Scopes    []string  `json:"scopes"`
	Type      TokenType `json:"type"`
	IssuedAt  int64     `json:"iat"`
	ExpiresAt int64     `json:"exp"`
}

// Expiry returns the claimed expiry as a time.
func (c UnverifiedClaims) Expiry() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}
