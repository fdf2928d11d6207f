// utils/auth.go
package utils

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// ShopIDKey and ShopNameKey are the gin context keys set by AuthMiddleware.
	ShopIDKey   = "shopId"
	ShopNameKey = "shopName"

	bcryptCost = 10
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the authenticated shop. Subject carries the shop id.
type Claims struct {
	jwt.RegisteredClaims
	ShopName string `json:"shop_name"`
}

// Hash password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// Check password
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken signs an HS256 token for the shop.
func GenerateToken(secret string, expiry time.Duration, shopID uint, shopName string) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not set")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(shopID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		ShopName: shopName,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates tokenString and returns the shop id it was issued for.
func ParseToken(secret, tokenString string) (uint, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, nil, ErrInvalidToken
	}

	shopID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || shopID == 0 {
		return 0, nil, ErrInvalidToken
	}
	return uint(shopID), claims, nil
}

// Auth middleware
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
			RespondWithError(c, 401, "Missing or invalid token")
			return
		}

		shopID, claims, err := ParseToken(secret, strings.TrimSpace(header[7:]))
		if err != nil {
			RespondWithError(c, 401, "Token invalid or expired")
			return
		}

		c.Set(ShopIDKey, shopID)
		c.Set(ShopNameKey, claims.ShopName)
		c.Next()
	}
}

// ShopID returns the tenant set by AuthMiddleware.
func ShopID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ShopIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
