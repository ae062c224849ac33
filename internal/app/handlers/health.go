package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
)

// Pinger — всё, что умеет проверить соединение (например, *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// HealthHandler обрабатывает GET /health: 200, если хранилище отвечает, иначе 503.
func HealthHandler(log *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.HealthHandler"
		logger := log.With(slog.String("op", op))

		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Error("database is unavailable", slog.Any("error", err))
			fail(w, logger, http.StatusServiceUnavailable, "database is unavailable")
			return
		}
		writeJSON(w, logger, http.StatusOK, models.Done[empty]("ok"))
	}
}
