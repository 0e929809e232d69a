package authx

import "slices"

// ScopeAdmin bypasses every specific scope requirement.
const ScopeAdmin = "admin"

// Decision is the outcome of a scope check.
type Decision int

const (
	// Allow grants the request.
	Allow Decision = iota

	// DenyUnauthorized means no identity was resolved at all.
	DenyUnauthorized

	// DenyForbidden means the identity exists but lacks the required scope.
	DenyForbidden
)

// Authorize decides identity × requiredScope. Rules, in order: no identity
// denies as unauthorized; the admin sentinel allows everything; otherwise
// the identity must hold requiredScope by exact string equality. There is
// no prefix or wildcard matching.
func Authorize(id *Identity, requiredScope string) Decision {
	if id == nil {
		return DenyUnauthorized
	}
	if slices.Contains(id.Scopes, ScopeAdmin) {
		return Allow
	}
	if slices.Contains(id.Scopes, requiredScope) {
		return Allow
	}
	return DenyForbidden
}
