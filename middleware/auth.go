package middleware

import (
	"net/http"
	"strings"

	"cinema-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

func extractJwtClaims(c *gin.Context) (jwt.MapClaims, bool) {
	authHeader := c.GetHeader("Authorization")

	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
		c.Abort()
		return nil, false
	}

	authHeader = strings.Trim(authHeader, "\"' ")

	if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		authHeader = "Bearer " + authHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format, expected: Bearer <token>"})
		c.Abort()
		return nil, false
	}

	tokenString := strings.Trim(parts[1], "\"' ")

	claims, err := utils.DecodeJWT(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
		c.Abort()
		return nil, false
	}

	return claims, true
}

// JWTAuth resolves the request identity from the bearer token and stores it
// in the request context. Identity is per-request; nothing is shared across
// requests.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractJwtClaims(c)
		if !ok {
			return
		}

		c.Set("user_id", claims["user_id"])
		c.Set("user_type", claims["user_type"])
		c.Next()
	}
}
