package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/service"
)

const (
	paramMissing  = "One or more of the required parameters was missing."
	adminRequired = "Requesting user must be an admin"
	badRequest    = "invalid request"
)

var validate = validator.New()

// empty — тип данных для конвертов, в которых data никогда не бывает.
type empty struct{}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// respond отдаёт конверт сервиса. Неуспешный конверт всегда уходит с 200.
func respond[T any](w http.ResponseWriter, logger *slog.Logger, successStatus int, res models.Result[T]) {
	status := http.StatusOK
	if res.Success {
		status = successStatus
	} else if res.Err != nil {
		logger.Warn("operation failed", slog.Any("error", res.Err))
	}
	writeJSON(w, logger, status, res)
}

func fail(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	writeJSON(w, logger, status, models.Fail[empty](message))
}

// decodeRequest читает JSON-тело, подставляет apiKey из JWT при необходимости и валидирует.
// При ошибке ответ уже записан.
func decodeRequest[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, req *T, apiKey *string) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		if errors.Is(err, io.EOF) {
			logger.Info("empty request body")
			fail(w, logger, http.StatusBadRequest, paramMissing)
			return false
		}
		logger.Info("invalid request: decoding error", slog.Any("error", err))
		fail(w, logger, http.StatusBadRequest, badRequest)
		return false
	}

	if apiKey != nil && *apiKey == "" {
		*apiKey = contextAPIKey(r.Context())
	}

	if err := validate.Struct(req); err != nil {
		logger.Info("invalid request: validation error", slog.Any("error", err))
		fail(w, logger, http.StatusBadRequest, paramMissing)
		return false
	}
	return true
}

func contextAPIKey(ctx context.Context) string {
	apiKey, _ := jwtmiddleware.FromContext(ctx)
	return apiKey
}

// AdminGuard пускает к операциям над каталогом и правами только администраторов.
type AdminGuard struct {
	users  service.UserService
	status int
}

// NewAdminGuard — status отдаётся, если пользователь не администратор (обычно 403).
func NewAdminGuard(users service.UserService, status int) *AdminGuard {
	if status == 0 {
		status = http.StatusForbidden
	}
	return &AdminGuard{users: users, status: status}
}

// Allow проверяет права; при отказе ответ уже записан.
func (g *AdminGuard) Allow(w http.ResponseWriter, r *http.Request, logger *slog.Logger, apiKey string) bool {
	if g.users.CheckAdmin(r.Context(), apiKey) {
		return true
	}
	logger.Info("admin check failed")
	fail(w, logger, g.status, adminRequired)
	return false
}
