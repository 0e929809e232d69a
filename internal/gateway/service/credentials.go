package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oxleyhq/apigate/internal/gateway/domain"
	"github.com/oxleyhq/apigate/internal/gateway/store"
	"github.com/oxleyhq/apigate/pkg/authx"
	"github.com/oxleyhq/apigate/pkg/cryptox"
	"github.com/oxleyhq/apigate/pkg/idx"
	"github.com/oxleyhq/apigate/pkg/slogx"
	"github.com/oxleyhq/apigate/pkg/tokenx"
)

var (
	// ErrInvalidCredentials covers unknown users, bad passwords, and
	// unknown or revoked API keys alike. Callers must not be able to
	// tell which stage rejected them.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrUserExists  = errors.New("user_already_exists")
	ErrKeyNotFound = errors.New("api_key_not_found")
)

// CredentialService owns the stored credentials backing Basic auth and
// X-API-Key. It satisfies both httpx validator interfaces.
type CredentialService struct {
	Store store.Store
}

// RegisterUser creates a user with an argon2id password hash.
func (s *CredentialService) RegisterUser(ctx context.Context, username, password string, scopes []string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Scopes:       scopes,
	}
	if err := s.Store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", user.ID), slog.String("username", username))
	return user, nil
}

// EnsureBootstrapUser seeds an initial admin user when the store is empty,
// so a fresh deployment can mint its first credentials. No-op otherwise.
func (s *CredentialService) EnsureBootstrapUser(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	_, err = s.RegisterUser(ctx, username, password, []string{authx.ScopeAdmin})
	return err
}

// ValidateBasic resolves a username/password pair to an identity. Unknown
// user and wrong password return the same error.
func (s *CredentialService) ValidateBasic(ctx context.Context, username, password string) (*authx.Identity, error) {
	user, err := s.Store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &authx.Identity{
		ID:     user.ID,
		Scopes: user.Scopes,
		Type:   tokenx.TypeUser,
	}, nil
}

// MintAPIKey creates an API key and returns the plaintext exactly once.
// Only the fingerprint is stored.
func (s *CredentialService) MintAPIKey(ctx context.Context, name string, scopes []string) (domain.APIKey, string, error) {
	l := slogx.FromContext(ctx)

	plaintext, err := cryptox.NewAPIKey()
	if err != nil {
		l.Error("failed to generate api key", slog.Any("error", err))
		return domain.APIKey{}, "", err
	}

	key := domain.APIKey{
		ID:          idx.New().String(),
		Name:        name,
		Fingerprint: cryptox.Fingerprint(plaintext),
		Scopes:      scopes,
	}
	if err := s.Store.APIKeys().Create(ctx, key); err != nil {
		return domain.APIKey{}, "", err
	}

	l.Info("api key minted", slog.String("key_id", key.ID), slog.String("name", name))
	return key, plaintext, nil
}

// ValidateAPIKey resolves a raw key to an identity via its fingerprint.
// Unknown and revoked keys are indistinguishable to the caller.
func (s *CredentialService) ValidateAPIKey(ctx context.Context, key string) (*authx.Identity, error) {
	stored, err := s.Store.APIKeys().GetByFingerprint(ctx, cryptox.Fingerprint(key))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if stored.Revoked() {
		return nil, ErrInvalidCredentials
	}

	return &authx.Identity{
		ID:     stored.ID,
		Scopes: stored.Scopes,
		Type:   tokenx.TypeAPIKey,
	}, nil
}

// RevokeAPIKey marks a key revoked. Revoking an unknown or already revoked
// key reports ErrKeyNotFound.
func (s *CredentialService) RevokeAPIKey(ctx context.Context, id string) error {
	err := s.Store.APIKeys().Revoke(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrKeyNotFound
	}
	if err == nil {
		slogx.FromContext(ctx).Info("api key revoked", slog.String("key_id", id))
	}
	return err
}

// ListAPIKeys returns all keys, revoked included.
func (s *CredentialService) ListAPIKeys(ctx context.Context) ([]domain.APIKey, error) {
	return s.Store.APIKeys().List(ctx)
}
