package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forgedToken builds a syntactically valid JWT signed with a key Clerk does
// not know about. The middleware must reject it.
func forgedToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "user_forged",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("not-the-clerk-key"))
	require.NoError(t, err)
	return signed
}

func authProbe() (http.Handler, *bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	return ClerkAuthMiddleware(next), &reached
}

func TestClerkAuthMissingHeader(t *testing.T) {
	handler, reached := authProbe()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestClerkAuthBadFormat(t *testing.T) {
	handler, reached := authProbe()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestClerkAuthForgedToken(t *testing.T) {
	handler, reached := authProbe()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "Bearer "+forgedToken(t))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestOptionalAuthPassesWithoutToken(t *testing.T) {
	var sawClerkID bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClerkID = GetClerkID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := OptionalAuthMiddleware(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sawClerkID)
}

func TestGetClerkID(t *testing.T) {
	_, ok := GetClerkID(context.Background())
	assert.False(t, ok)

	ctx := context.WithValue(context.Background(), ClerkIDKey, "user_abc")
	id, ok := GetClerkID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user_abc", id)
}
