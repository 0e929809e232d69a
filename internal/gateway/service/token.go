package service

import (
	"context"
	"log/slog"

	"github.com/oxleyhq/apigate/pkg/authx"
	"github.com/oxleyhq/apigate/pkg/slogx"
	"github.com/oxleyhq/apigate/pkg/tokenx"
)

// TokenService issues and refreshes signed tokens with the configured
// lifetimes. The secret is read-only for the process lifetime.
type TokenService struct {
	Secret    []byte
	UserTTL   string // e.g. "24h"
	AccessTTL string // e.g. "1h"
}

// IssueUserToken mints a user token for an authenticated identity and
// returns it with its lifetime in seconds.
func (s *TokenService) IssueUserToken(ctx context.Context, identity *authx.Identity) (string, int, error) {
	token, err := tokenx.NewUserToken(identity.ID, identity.Scopes, s.Secret, s.UserTTL)
	if err != nil {
		return "", 0, err
	}

	slogx.FromContext(ctx).Info("user token issued", slog.String("user_id", identity.ID))
	return token, int(tokenx.ParseExpiration(s.UserTTL).Seconds()), nil
}

// IssueAccessToken mints an access token for an API-key identity.
func (s *TokenService) IssueAccessToken(ctx context.Context, identity *authx.Identity) (string, int, error) {
	token, err := tokenx.NewAccessToken(identity.ID, identity.Scopes, s.Secret, s.AccessTTL)
	if err != nil {
		return "", 0, err
	}

	slogx.FromContext(ctx).Info("access token issued", slog.String("key_id", identity.ID))
	return token, int(tokenx.ParseExpiration(s.AccessTTL).Seconds()), nil
}

// Refresh verifies the presented token and reissues it with a fresh
// lifetime. Invalid or expired tokens fail with tokenx.ErrInvalid.
func (s *TokenService) Refresh(ctx context.Context, oldToken string) (string, int, error) {
	claims, err := tokenx.Verify(oldToken, s.Secret)
	if err != nil {
		return "", 0, err
	}

	ttl := s.UserTTL
	if claims.Type == tokenx.TypeAPIKey {
		ttl = s.AccessTTL
	}

	token, err := tokenx.Generate(claims, s.Secret, ttl)
	if err != nil {
		return "", 0, err
	}

	slogx.FromContext(ctx).Info("token refreshed", slog.String("subject", claims.Subject))
	return token, int(tokenx.ParseExpiration(ttl).Seconds()), nil
}

// Introspect decodes a token without verifying it. The result is claimed
// metadata for display only and never grants access.
func (s *TokenService) Introspect(token string) (tokenx.UnverifiedClaims, error) {
	return tokenx.Decode(token)
}
