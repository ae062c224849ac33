package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const refreshTimeout = 30 * time.Second

// NewCacheRefresher возвращает ещё не запущенный cron, который по расписанию
// перечитывает каталог в кэш. Запуск и остановка — на вызывающем.
func NewCacheRefresher(log *slog.Logger, items ItemService, schedule string) (*cron.Cron, error) {
	const op = "service.NewCacheRefresher"
	logger := log.With(slog.String("op", op))

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := items.Refresh(ctx); err != nil {
			logger.Error("item cache refresh failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}
