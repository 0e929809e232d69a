package tokenx

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// Sign computes the base64url-encoded HMAC-SHA256 signature over
// signingInput (the "header.payload" string) with the given secret.
func Sign(signingInput string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// SignaturesEqual compares two encoded signatures in constant time.
//
// The length short-circuit is safe for HS256: the digest is always 32 bytes
// (43 chars encoded) regardless of secret or message, so a length mismatch
// can only come from a malformed token, never from secret-dependent state.
func SignaturesEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
