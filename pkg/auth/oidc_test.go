package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://id.example.com"
	testClientID = "headless-admin"
)

func signToken(t *testing.T, key *rsa.PrivateKey, claims map[string]any) string {
	t.Helper()

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, nil)
	require.NoError(t, err)

	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	jws, err := signer.Sign(payload)
	require.NoError(t, err)

	raw, err := jws.CompactSerialize()
	require.NoError(t, err)
	return raw
}

func newTestVerifier(t *testing.T) (*OIDCVerifier, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	return NewOIDCVerifierWithKeys(testIssuer, testClientID, keys), key
}

func TestOIDCVerifier_Verify(t *testing.T) {
	v, key := newTestVerifier(t)
	now := time.Now()

	raw := signToken(t, key, map[string]any{
		"iss":   testIssuer,
		"aud":   testClientID,
		"sub":   "user-42",
		"email": "editor@example.com",
		"name":  "Editor",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})

	id, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", id.Subject)
	assert.Equal(t, "editor@example.com", id.Email)
	assert.Equal(t, "Editor", id.Name)
	assert.Equal(t, testIssuer, id.Provider)
}

func TestOIDCVerifier_Rejects(t *testing.T) {
	v, key := newTestVerifier(t)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	now := time.Now()

	base := func() map[string]any {
		return map[string]any{
			"iss": testIssuer,
			"aud": testClientID,
			"sub": "user-42",
			"iat": now.Unix(),
			"exp": now.Add(time.Hour).Unix(),
		}
	}

	expired := base()
	expired["exp"] = now.Add(-time.Hour).Unix()

	wrongAudience := base()
	wrongAudience["aud"] = "someone-else"

	wrongIssuer := base()
	wrongIssuer["iss"] = "https://evil.example.com"

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"expired", signToken(t, key, expired)},
		{"wrong audience", signToken(t, key, wrongAudience)},
		{"wrong issuer", signToken(t, key, wrongIssuer)},
		{"wrong key", signToken(t, otherKey, base())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewOIDCVerifier_RequiresConfig(t *testing.T) {
	_, err := NewOIDCVerifier(context.Background(), "", testClientID)
	assert.Error(t, err)
	_, err = NewOIDCVerifier(context.Background(), testIssuer, "")
	assert.Error(t, err)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, IdentityFromContext(ctx))

	id := &Identity{Subject: "ops", Provider: "static"}
	ctx = WithIdentity(ctx, id)
	assert.Same(t, id, IdentityFromContext(ctx))
}
