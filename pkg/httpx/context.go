package httpx

import (
	"context"

	"github.com/oxleyhq/apigate/pkg/authx"
)

type identityKey struct{}

// ContextWithIdentity stores a resolved identity. Only the authentication
// middleware (and test setup) should call this.
func ContextWithIdentity(ctx context.Context, id *authx.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the resolved identity, or nil when the
// request did not authenticate.
func IdentityFromContext(ctx context.Context) *authx.Identity {
	if id, ok := ctx.Value(identityKey{}).(*authx.Identity); ok {
		return id
	}
	return nil
}
