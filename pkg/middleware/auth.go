/**
 * @description
 * This package provides middleware for the HTTP server, specifically for
 * authentication with HS256-signed JWTs and per-caller rate limiting.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: Token signing and validation.
 */
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthContextKey is a custom type for the context key to avoid collisions.
type AuthContextKey string

const (
	// UserIDKey is the key used to store the caller's subject in the request context.
	UserIDKey AuthContextKey = "userID"
	// AuthTokenKey is the key used to store the raw auth token in the request context.
	AuthTokenKey AuthContextKey = "authToken"
)

// RoleAdmin is the only role issued by this service.
const RoleAdmin = "ADMIN"

var (
	// ErrNoAuthHeader is returned when the Authorization header is missing.
	ErrNoAuthHeader = errors.New("authorization header is required")
	// ErrInvalidAuthHeader is returned when the header is not a bearer token.
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
	// ErrInvalidToken is returned when the token fails validation.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the JWT payload issued on login.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for subject valid for ttl from now.
func IssueToken(secret, subject string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken validates an HS256 token and returns its subject.
func ParseToken(secret, raw string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthHeader
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidAuthHeader
	}
	return strings.TrimSpace(parts[1]), nil
}

// AuthMiddleware creates a middleware that validates a bearer JWT and extracts its subject.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			subject, err := ParseToken(secret, raw)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, subject)
			ctx = context.WithValue(ctx, AuthTokenKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext retrieves the user ID from the request context.
// It returns an empty string if the user ID is not found.
func GetUserIDFromContext(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetAuthTokenFromContext retrieves the authorization token from the request context.
// It returns an empty string if the token is not found.
func GetAuthTokenFromContext(ctx context.Context) string {
	token, ok := ctx.Value(AuthTokenKey).(string)
	if !ok {
		return ""
	}
	return token
}
