// Package store defines the persistence boundary for gateway credentials.
// Concrete drivers live under drivers/; everything above this interface is
// driver-agnostic.
package store

import (
	"context"
	"errors"

	"github.com/oxleyhq/apigate/internal/gateway/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface, exposing one repository per
// entity kind.
type Store interface {
	Users() Users
	APIKeys() APIKeys

	// ApplyMigrations brings the schema up to date from the embedded
	// migration files.
	ApplyMigrations() error

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}

type Users interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Create(ctx context.Context, u domain.User) error

	// IsEmpty reports whether any user exists; used by first-run bootstrap.
	IsEmpty(ctx context.Context) (bool, error)
}

type APIKeys interface {
	GetByFingerprint(ctx context.Context, fingerprint string) (domain.APIKey, error)
	Create(ctx context.Context, k domain.APIKey) error

	// Revoke marks the key withdrawn. ErrNotFound when no such key.
	Revoke(ctx context.Context, id string) error

	List(ctx context.Context) ([]domain.APIKey, error)
}
