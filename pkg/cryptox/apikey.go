package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// APIKeyPrefix marks gateway-issued keys so leaked ones are recognizable in
// scanners and logs without revealing anything about the key material.
const APIKeyPrefix = "gw_"

// apiKeyBytes is 256 bits of entropy per key.
const apiKeyBytes = 32

// NewAPIKey mints a random API key. The plaintext is shown to the caller
// exactly once at mint time; only its fingerprint is ever stored.
func NewAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: generate api key: %w", err)
	}
	return APIKeyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// Fingerprint returns the deterministic SHA-256 fingerprint of a key,
// base64url-encoded. Lookups go through this so the store never holds
// plaintext key material.
func Fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// LooksLikeAPIKey reports whether s carries the gateway key prefix. This is
// a shape check only, never a validity check.
func LooksLikeAPIKey(s string) bool {
	return strings.HasPrefix(s, APIKeyPrefix)
}
