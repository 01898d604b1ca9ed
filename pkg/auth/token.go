package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// TokenPrefix identifies static admin tokens
	TokenPrefix = "hcms_"
	// TokenLength is the total length of random bytes (32 bytes = 256 bits)
	TokenLength = 32
)

// GenerateToken creates a new static admin token.
// Format: hcms_<base64url(32 random bytes)>
// Only the returned hash should be stored in configuration.
func GenerateToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, TokenLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	token = TokenPrefix + base64.RawURLEncoding.EncodeToString(randomBytes)
	return token, HashToken(token), nil
}

// HashToken computes the SHA256 hash of a token for lookup
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// ValidateTokenFormat checks if a token has the correct format
func ValidateTokenFormat(token string) error {
	if !strings.HasPrefix(token, TokenPrefix) {
		return fmt.Errorf("token must start with %q", TokenPrefix)
	}

	encodedPart := strings.TrimPrefix(token, TokenPrefix)
	if len(encodedPart) == 0 {
		return fmt.Errorf("token is too short")
	}

	if _, err := base64.RawURLEncoding.DecodeString(encodedPart); err != nil {
		return fmt.Errorf("invalid token encoding: %w", err)
	}
	return nil
}

// StaticTokenVerifier accepts a fixed set of hashed tokens. Each hash maps
// to the subject name reported for that token.
type StaticTokenVerifier struct {
	subjects map[string]string
}

// NewStaticTokenVerifier parses "subject:sha256hex" entries
func NewStaticTokenVerifier(entries []string) (*StaticTokenVerifier, error) {
	subjects := make(map[string]string, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		subject, hash, ok := strings.Cut(entry, ":")
		if !ok || subject == "" || len(hash) != sha256.Size*2 {
			return nil, fmt.Errorf("invalid static token entry %q (want subject:sha256hex)", entry)
		}
		if _, err := hex.DecodeString(hash); err != nil {
			return nil, fmt.Errorf("invalid static token hash for %s: %w", subject, err)
		}
		subjects[strings.ToLower(hash)] = subject
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("at least one static token is required")
	}
	return &StaticTokenVerifier{subjects: subjects}, nil
}

// Verify implements TokenVerifier
func (v *StaticTokenVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	if err := ValidateTokenFormat(rawToken); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	hash := HashToken(rawToken)
	for known, subject := range v.subjects {
		if subtle.ConstantTimeCompare([]byte(known), []byte(hash)) == 1 {
			return &Identity{Subject: subject, Provider: "static"}, nil
		}
	}
	return nil, ErrInvalidToken
}
