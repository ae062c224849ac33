package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptySecret = errors.New("jwt secret is empty")

// NewToken генерирует JWT-токен для пользователя apiKey с заданным временем жизни.
func NewToken(apiKey, secret string, issuedAt time.Time, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	claims := jwt.MapClaims{
		"sub": apiKey,
		"exp": issuedAt.Add(ttl).Unix(),
		"iat": issuedAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
