package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/storefront/internal/service"
)

type SessionRequest struct {
	APIKey string `json:"apiKey" validate:"required"`
}

// SessionHandler обрабатывает POST /session и выдаёт JWT по apiKey.
func SessionHandler(log *slog.Logger, sessions service.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SessionHandler"
		logger := log.With(slog.String("op", op))

		var req SessionRequest
		if !decodeRequest(w, r, logger, &req, nil) {
			return
		}

		respond(w, logger, http.StatusOK, sessions.Login(r.Context(), req.APIKey))
	}
}
