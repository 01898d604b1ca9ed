package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateToken(t *testing.T) {
	token, tokenHash, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if !strings.HasPrefix(token, TokenPrefix) {
		t.Errorf("Token should start with %q, got %q", TokenPrefix, token)
	}

	// SHA256 = 64 hex chars
	if len(tokenHash) != 64 {
		t.Errorf("TokenHash length = %d, want 64", len(tokenHash))
	}

	if tokenHash != HashToken(token) {
		t.Error("Returned hash should match HashToken(token)")
	}

	if err := ValidateTokenFormat(token); err != nil {
		t.Errorf("Generated token failed validation: %v", err)
	}
}

func TestGenerateToken_Uniqueness(t *testing.T) {
	tokens := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, _, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		if tokens[token] {
			t.Errorf("Duplicate token generated: %s", token)
		}
		tokens[token] = true
	}
}

func TestValidateTokenFormat(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid", "hcms_dGVzdA", false},
		{"wrong prefix", "hcm_dGVzdA", true},
		{"prefix only", "hcms_", true},
		{"bad encoding", "hcms_!!!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTokenFormat(tt.token)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTokenFormat(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
		})
	}
}

func TestStaticTokenVerifier(t *testing.T) {
	token, hash, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	v, err := NewStaticTokenVerifier([]string{"ops:" + hash, " "})
	if err != nil {
		t.Fatalf("NewStaticTokenVerifier() error = %v", err)
	}

	id, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.Subject != "ops" || id.Provider != "static" {
		t.Errorf("Verify() identity = %+v", id)
	}

	other, _, _ := GenerateToken()
	if _, err := v.Verify(context.Background(), other); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("unknown token: error = %v, want ErrInvalidToken", err)
	}

	if _, err := v.Verify(context.Background(), "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("malformed token: error = %v, want ErrInvalidToken", err)
	}
}

func TestNewStaticTokenVerifier_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
	}{
		{"empty", nil},
		{"no subject", []string{":" + HashToken("x")}},
		{"short hash", []string{"ops:abcd"}},
		{"not hex", []string{"ops:" + strings.Repeat("z", 64)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStaticTokenVerifier(tt.entries); err == nil {
				t.Error("expected error")
			}
		})
	}
}
