// Package auth verifies the bearer tokens presented to administrative
// endpoints.
//
// Two verifiers implement TokenVerifier:
//
//   - OIDCVerifier checks ID tokens signed by an OpenID Connect provider,
//     discovered from its issuer URL.
//   - StaticTokenVerifier checks opaque admin tokens against SHA256 hashes
//     held in configuration.
//
// Static tokens have the form hcms_<base64url(32 random bytes)>:
//
//	token, hash, err := auth.GenerateToken()
//	// store "ops:"+hash in HEADLESS_AUTH_STATIC_TOKENS, hand token to the caller
//
// A verified caller is carried on the request context as an *Identity:
//
//	ctx = auth.WithIdentity(ctx, id)
//	who := auth.IdentityFromContext(ctx)
package auth
