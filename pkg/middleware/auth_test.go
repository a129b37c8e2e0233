package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func protected(t *testing.T) http.Handler {
	t.Helper()
	return AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Subject", GetUserIDFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))
}

func TestIssueAndParseToken(t *testing.T) {
	now := time.Now()
	token, expiresAt, err := IssueToken(testSecret, "admin", 10*time.Minute, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(10*time.Minute), expiresAt, time.Second)

	subject, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestAuthMiddleware(t *testing.T) {
	valid, _, err := IssueToken(testSecret, "admin", time.Minute, time.Now())
	require.NoError(t, err)
	expired, _, err := IssueToken(testSecret, "admin", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	otherSecret, _, err := IssueToken("another-secret", "admin", time.Minute, time.Now())
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "valid token", header: "Bearer " + valid, wantCode: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + valid, wantCode: http.StatusOK},
		{name: "missing header", header: "", wantCode: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantCode: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + otherSecret, wantCode: http.StatusUnauthorized},
		{name: "unsigned token", header: "Bearer " + none, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/clientes/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(t).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "admin", rec.Header().Get("X-Subject"))
			}
		})
	}
}
