package infrastructure

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "sssh-only-for-tests"

func signToken(t *testing.T, claims jwt.Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func testClaims(userID, email string) authClaims {
	return authClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "festivo",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func requestWithToken(token string) *http.Request {
	req := httptest.NewRequest("GET", "/team/invites", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func Test_Authenticate(t *testing.T) {
	client := NewAuthClient(AuthConfig{Secret: testSecret, Issuer: "festivo"})

	signed := signToken(t, testClaims("UID123", "Owner@Example.ORG"), testSecret)

	td := client.Authenticate(requestWithToken(signed))
	require.NotNil(t, td)
	assert.Equal(t, "UID123", td.UserID)
	assert.Equal(t, "owner@example.org", td.Email, "the email claim should come back normalized")
}

func Test_AuthenticateRejectsBadCredentials(t *testing.T) {
	client := NewAuthClient(AuthConfig{Secret: testSecret, Issuer: "festivo"})

	t.Run("missing header", func(t *testing.T) {
		assert.Nil(t, client.Authenticate(requestWithToken("")))
	})

	t.Run("not a bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/team/invites", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		assert.Nil(t, client.Authenticate(req))
	})

	t.Run("wrong secret", func(t *testing.T) {
		signed := signToken(t, testClaims("UID123", "owner@example.org"), "some-other-secret")
		assert.Nil(t, client.Authenticate(requestWithToken(signed)))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := testClaims("UID123", "owner@example.org")
		claims.Issuer = "somebody-else"
		signed := signToken(t, claims, testSecret)
		assert.Nil(t, client.Authenticate(requestWithToken(signed)))
	})

	t.Run("expired token", func(t *testing.T) {
		claims := testClaims("UID123", "owner@example.org")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		signed := signToken(t, claims, testSecret)
		assert.Nil(t, client.Authenticate(requestWithToken(signed)))
	})

	t.Run("missing subject", func(t *testing.T) {
		signed := signToken(t, testClaims("", "owner@example.org"), testSecret)
		assert.Nil(t, client.Authenticate(requestWithToken(signed)))
	})
}
