package utils

import (
	"fmt"
	"os"
	"time"

	"cinema-backend/models"

	"github.com/golang-jwt/jwt"
)

// GenerateJWT issues a signed identity token for the given user. Tokens
// expire after the given number of hours; the non-expiring tokens of older
// deployments are not supported.
func GenerateJWT(user models.User, hours int) (string, error) {
	var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

	claims := jwt.MapClaims{
		"user_id":   user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"user_type": string(user.UserType),
		"exp":       time.Now().Add(time.Hour * time.Duration(hours)).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func DecodeJWT(tokenString string) (jwt.MapClaims, error) {
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signature method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid or expired token")
}
