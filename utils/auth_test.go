package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-for-hs256-signing"

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, time.Hour, 42, "North Garage")
	require.NoError(t, err)

	shopID, claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), shopID)
	assert.Equal(t, "North Garage", claims.ShopName)
	assert.Equal(t, "42", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken(testSecret, -time.Minute, 1, "x")
	require.NoError(t, err)

	other, err := GenerateToken("some-other-secret", time.Hour, 1, "x")
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":    expired,
		"wrong key":  other,
		"no subject": noSubject,
		"garbage":    "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseToken(testSecret, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = GenerateToken("", time.Hour, 1, "x")
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/whoami", AuthMiddleware(testSecret), func(c *gin.Context) {
		id, ok := ShopID(c)
		c.JSON(http.StatusOK, gin.H{"shop_id": id, "ok": ok, "name": c.GetString(ShopNameKey)})
	})

	valid, err := GenerateToken(testSecret, time.Hour, 7, "North Garage")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"no header", "", http.StatusUnauthorized, "Missing or invalid token"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Missing or invalid token"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "Token invalid or expired"},
		{"valid", "Bearer " + valid, http.StatusOK, `"shop_id":7`},
		{"lower-case scheme", "bearer " + valid, http.StatusOK, `"name":"North Garage"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
