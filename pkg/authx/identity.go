package authx

import "github.com/oxleyhq/apigate/pkg/tokenx"

// Identity is a resolved principal. One is only ever constructed from a
// verified token (FromClaims) or a credential validated against the store;
// an unverified decode has no path into this type.
type Identity struct {
	// ID is the principal identifier (user ID or API-key ID).
	ID string

	// Scopes are the permission strings the principal holds.
	Scopes []string

	// Type records how the principal authenticated.
	Type tokenx.TokenType
}

// FromClaims builds an Identity from claims returned by tokenx.Verify.
func FromClaims(c tokenx.Claims) *Identity {
	return &Identity{
		ID:     c.Subject,
		Scopes: c.Scopes,
		Type:   c.Type,
	}
}
