package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/auth"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/httputil"
)

var (
	// ErrMissingAuthorization is returned when no Authorization header is sent
	ErrMissingAuthorization = errors.New("missing authorization header")
	// ErrMalformedAuthorization is returned for headers not of the form "Bearer <token>"
	ErrMalformedAuthorization = errors.New("invalid authorization header format")
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthorization
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMalformedAuthorization
	}
	return strings.TrimSpace(parts[1]), nil
}

// AuthMiddleware provides authentication middleware
type AuthMiddleware struct {
	verifier auth.TokenVerifier
	optional bool // If true, allow requests without auth
	logger   logrus.FieldLogger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(verifier auth.TokenVerifier, optional bool, logger logrus.FieldLogger) *AuthMiddleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthMiddleware{
		verifier: verifier,
		optional: optional,
		logger:   logger,
	}
}

// Handler wraps an HTTP handler with authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if errors.Is(err, ErrMissingAuthorization) && m.optional {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			httputil.WriteUnauthorized(w, err.Error())
			return
		}

		identity, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			m.logger.WithError(err).WithField("path", r.URL.Path).Debug("token rejected")
			httputil.WriteUnauthorized(w, auth.ErrInvalidToken.Error())
			return
		}

		ctx := auth.WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
