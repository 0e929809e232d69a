package domain

import "time"

// APIKey is a stored machine credential. The key material itself never
// touches the database; Fingerprint is its SHA-256 digest and the only
// lookup handle.
type APIKey struct {
	ID          string
	Name        string
	Fingerprint string
	Scopes      []string
	CreatedAt   time.Time
	RevokedAt   *time.Time
}

// Revoked reports whether the key has been withdrawn. Revocation is
// permanent; there is no un-revoke.
func (k APIKey) Revoked() bool {
	return k.RevokedAt != nil
}
