package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
)

// UserPayload — пользователь в теле запроса.
type UserPayload struct {
	APIKey    string `json:"apiKey"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type CreateUserRequest struct {
	User *UserPayload `json:"user" validate:"required"`
}

type UpdateUserRequest struct {
	User *UserPayload `json:"user" validate:"required"`
}

type PromoteUserRequest struct {
	APIKey     string `json:"apiKey" validate:"required"`
	PromoteKey string `json:"promoteKey" validate:"required"`
}

// CreateUserHandler обрабатывает POST /user
func CreateUserHandler(log *slog.Logger, users service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateUserHandler"
		logger := log.With(slog.String("op", op))

		var req CreateUserRequest
		if !decodeRequest(w, r, logger, &req, nil) {
			return
		}

		user, err := models.NewUser(req.User.FirstName, req.User.LastName, req.User.Email)
		if err != nil {
			logger.Info("invalid user", slog.Any("error", err))
			fail(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		respond(w, logger, http.StatusCreated, users.Create(r.Context(), user))
	}
}

// GetUserHandler обрабатывает GET /user/{apiKey}
func GetUserHandler(log *slog.Logger, users service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetUserHandler"
		logger := log.With(slog.String("op", op))

		apiKey := chi.URLParam(r, "apiKey")
		respond(w, logger, http.StatusOK, users.Get(r.Context(), apiKey))
	}
}

// UpdateUserHandler обрабатывает PUT /user
// apiKey берётся из user.apiKey, а без него — из JWT.
func UpdateUserHandler(log *slog.Logger, users service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateUserHandler"
		logger := log.With(slog.String("op", op))

		var req UpdateUserRequest
		if !decodeRequest(w, r, logger, &req, nil) {
			return
		}
		if req.User.APIKey == "" {
			req.User.APIKey = contextAPIKey(r.Context())
		}
		if req.User.APIKey == "" {
			logger.Info("invalid request: apiKey missing")
			fail(w, logger, http.StatusBadRequest, paramMissing)
			return
		}

		user, err := models.NewUser(req.User.FirstName, req.User.LastName, req.User.Email)
		if err != nil {
			logger.Info("invalid user", slog.Any("error", err))
			fail(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		respond(w, logger, http.StatusOK, users.Update(r.Context(), req.User.APIKey, user))
	}
}

// RemoveUserHandler обрабатывает DELETE /user/{apiKey}
func RemoveUserHandler(log *slog.Logger, users service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveUserHandler"
		logger := log.With(slog.String("op", op))

		apiKey := chi.URLParam(r, "apiKey")
		respond(w, logger, http.StatusOK, users.Remove(r.Context(), apiKey))
	}
}

// PromoteUserHandler обрабатывает PUT /user/promote
// Права проверяет сам сервис: отказ приходит обычным конвертом.
func PromoteUserHandler(log *slog.Logger, users service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PromoteUserHandler"
		logger := log.With(slog.String("op", op))

		var req PromoteUserRequest
		if !decodeRequest(w, r, logger, &req, &req.APIKey) {
			return
		}

		respond(w, logger, http.StatusOK, users.Promote(r.Context(), req.APIKey, req.PromoteKey))
	}
}
