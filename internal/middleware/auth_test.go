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

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authedRequest(t *testing.T, token string) (*httptest.ResponseRecorder, *http.Request) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return httptest.NewRecorder(), req
}

func TestAuthValidToken(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		PropertyIDs: []string{"prop-1"},
	}
	token := signToken(t, testSecret, claims)

	var gotUser string
	var gotProps []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserID(r.Context())
		gotProps = GetPropertyIDs(r.Context())
	})

	rec, req := authedRequest(t, token)
	Auth(testSecret)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", gotUser)
	assert.Equal(t, []string{"prop-1"}, gotProps)
}

func TestAuthMissingHeader(t *testing.T) {
	rec, req := authedRequest(t, "")
	Auth(testSecret)(failHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")

	Auth(testSecret)(failHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	rec, req := authedRequest(t, token)
	Auth(testSecret)(failHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	rec, req := authedRequest(t, token)
	Auth(testSecret)(failHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func failHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})
}

func TestCanAccessProperty(t *testing.T) {
	scoped := context.WithValue(context.Background(), PropertyIDsKey, []string{"prop-1", "prop-2"})

	assert.True(t, CanAccessProperty(scoped, "prop-1"))
	assert.False(t, CanAccessProperty(scoped, "prop-3"))

	// Empty scope means unrestricted.
	assert.True(t, CanAccessProperty(context.Background(), "prop-9"))
}
