package jwtmiddleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linemk/storefront/internal/domain/models"
)

type contextKey string

const APIKeyKey contextKey = "apiKey"

// New создаёт middleware для необязательной проверки JWT.
// Без заголовка Authorization запрос проходит дальше как есть,
// с невалидным токеном получает 401.
func New(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			// формат: "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "invalid token format")
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				unauthorized(w, "invalid token claims: sub not found")
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized отвечает 401 тем же конвертом, что и остальной API.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.Fail[struct{}](message))
}

// FromContext извлекает apiKey из контекста.
func FromContext(ctx context.Context) (string, bool) {
	apiKey, ok := ctx.Value(APIKeyKey).(string)
	return apiKey, ok
}
