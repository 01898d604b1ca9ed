package auth

import (
	"context"
	"errors"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/contextkeys"
)

// ErrInvalidToken is returned for tokens that are missing, malformed,
// expired or unknown
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the verified caller behind a bearer token
type Identity struct {
	Subject  string `json:"sub"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider"`
}

// TokenVerifier checks a raw bearer token against an identity provider
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// WithIdentity stores the verified identity on the context
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	ctx = contextkeys.WithAuth(ctx, id)
	if id != nil {
		ctx = contextkeys.WithUserID(ctx, id.Subject)
	}
	return ctx
}

// IdentityFromContext returns the identity set by WithIdentity, or nil
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(contextkeys.AuthKey).(*Identity)
	return id
}
