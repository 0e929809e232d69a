// Package tokenx implements the signed-token layer of the gateway: stateless
// HS256 tokens carrying a subject, scope list, and expiry. Tokens are plain
// JWTs on the wire (header.payload.signature, base64url without padding) so
// any standard JWT tooling can consume them, but issuing and verification go
// through this package to keep the failure behavior uniform.
package tokenx

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid is the only error Verify and Refresh return for a bad token.
// Malformed tokens, signature mismatches, and expired tokens are
// indistinguishable to callers so that no caller (or attacker driving one)
// can use the failure mode as a verification oracle.
var ErrInvalid = errors.New("tokenx: invalid token")

// Default lifetimes applied by the convenience constructors.
const (
	DefaultAccessTokenTTL = "1h"
	DefaultUserTokenTTL   = "24h"
)

// header is constant for every token this package mints.
var encodedHeader = mustEncodeHeader()

type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

func mustEncodeHeader() string {
	seg, err := EncodeSegment(tokenHeader{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		panic("tokenx: encode header: " + err.Error())
	}
	return seg
}

var expirationPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseExpiration converts strings like "30s", "15m", "1h", "7d" into a
// duration. Anything that does not match falls back to 24 hours. The silent
// fallback is part of the contract: a bad lifetime string must never block
// token issuance.
func ParseExpiration(expiresIn string) time.Duration {
	m := expirationPattern.FindStringSubmatch(expiresIn)
	if m == nil {
		return 24 * time.Hour
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Digits too large for int64; treat like any other bad input.
		return 24 * time.Hour
	}

	switch m[2] {
	case "s":
		return time.Duration(n) * time.Second
	case "m":
		return time.Duration(n) * time.Minute
	case "h":
		return time.Duration(n) * time.Hour
	default: // "d"
		return time.Duration(n) * 24 * time.Hour
	}
}

// Generate mints a signed token for the subject, scopes, and type carried in
// c. IssuedAt and ExpiresAt on c are ignored; iat is set to now and exp to
// iat plus the parsed expiresIn.
func Generate(c Claims, secret []byte, expiresIn string) (string, error) {
	now := time.Now().Unix()
	c.IssuedAt = now
	c.ExpiresAt = now + int64(ParseExpiration(expiresIn).Seconds())

	payload, err := EncodeSegment(c)
	if err != nil {
		return "", err
	}

	signingInput := encodedHeader + "." + payload
	return signingInput + "." + Sign(signingInput, secret), nil
}

// NewUserToken mints a token of type "user". An empty expiresIn applies the
// 24h user default.
func NewUserToken(userID string, scopes []string, secret []byte, expiresIn string) (string, error) {
	if expiresIn == "" {
		expiresIn = DefaultUserTokenTTL
	}
	return Generate(Claims{Subject: userID, Scopes: scopes, Type: TypeUser}, secret, expiresIn)
}

// NewAccessToken mints a token of type "api_key" on behalf of a stored API
// key. An empty expiresIn applies the 1h access default.
func NewAccessToken(keyID string, scopes []string, secret []byte, expiresIn string) (string, error) {
	if expiresIn == "" {
		expiresIn = DefaultAccessTokenTTL
	}
	return Generate(Claims{Subject: keyID, Scopes: scopes, Type: TypeAPIKey}, secret, expiresIn)
}

// Verify checks a token's structure, signature, and expiry against secret
// and returns its claims. Every failure is ErrInvalid; see the doc there.
//
// The signature is recomputed over the received header and payload segments,
// so a token whose header was altered (alg swapping included) can never
// verify: this package only ever signs and checks HS256.
func Verify(token string, secret []byte) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalid
	}

	expected := Sign(parts[0]+"."+parts[1], secret)
	if !SignaturesEqual(parts[2], expected) {
		return Claims{}, ErrInvalid
	}

	var c Claims
	if err := DecodeSegment(parts[1], &c); err != nil {
		return Claims{}, ErrInvalid
	}

	// exp is exclusive: a token dies the moment the clock reaches it, not
	// a second later. Unix() truncates, so now >= exp means at least exp's
	// wall-clock second has started.
	if c.ExpiresAt <= time.Now().Unix() {
		return Claims{}, ErrInvalid
	}

	return c, nil
}

// Decode reads the payload of a token without verifying its signature.
// See UnverifiedClaims for what that does and does not mean.
func Decode(token string) (UnverifiedClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return UnverifiedClaims{}, ErrInvalid
	}

	var c UnverifiedClaims
	if err := DecodeSegment(parts[1], &c); err != nil {
		return UnverifiedClaims{}, ErrInvalid
	}
	return c, nil
}

// IsExpired reports whether the token CLAIMS to be expired. A token that
// cannot be decoded counts as expired. This says nothing about signature
// validity; use Verify for that.
func IsExpired(token string) bool {
	c, err := Decode(token)
	if err != nil {
		return true
	}
	return c.ExpiresAt <= time.Now().Unix()
}

// TTL returns the remaining CLAIMED lifetime of a token, or zero if the
// token is undecodable or claims to be expired already.
func TTL(token string) time.Duration {
	c, err := Decode(token)
	if err != nil {
		return 0
	}
	remaining := time.Until(c.Expiry())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Refresh verifies oldToken and, if it is valid, mints a fresh token copying
// its subject, scopes, and type with a new iat/exp. An invalid or expired
// token cannot be refreshed; there is no sliding renewal past expiry.
func Refresh(oldToken string, secret []byte, expiresIn string) (string, error) {
	c, err := Verify(oldToken, secret)
	if err != nil {
		return "", ErrInvalid
	}
	return Generate(Claims{Subject: c.Subject, Scopes: c.Scopes, Type: c.Type}, secret, expiresIn)
}
