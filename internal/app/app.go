package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/lib/metrics"
	"github.com/linemk/storefront/internal/lib/ratelimit"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
	"github.com/linemk/storefront/internal/storage/cache"
)

const limiterIdle = 10 * time.Minute

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	Redis  *redis.Client
	Router http.Handler
	// Refresher равен nil, если кэша нет или расписание пустое
	Refresher *cron.Cron
	Limiter   *ratelimit.Limiter
}

// NewApp создаёт новый экземпляр App: подключения, сервисы и роутер
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	// реализуем подключение к БД через DSN
	db, err := sql.Open("postgres", DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	itemCache, err := app.setupCache(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(db)
	itemRepo := storage.NewItemRepository(db)
	orderRepo := storage.NewOrderRepository(db)

	items := service.NewItemService(log, itemRepo, itemCache)
	svc := Services{
		Users:    service.NewUserService(log, userRepo),
		Items:    items,
		Orders:   service.NewOrderService(log, userRepo, itemRepo, orderRepo, time.Now),
		Sessions: service.NewSessionService(log, userRepo, cfg.JWT.Secret, cfg.JWT.TTL(), time.Now),
		DB:       db,
	}

	if itemCache != nil && cfg.Cache.RefreshSchedule != "" {
		app.Refresher, err = service.NewCacheRefresher(log, items, cfg.Cache.RefreshSchedule)
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	rl := cfg.HTTPServer.RateLimit
	app.Limiter = ratelimit.New(log, rl.RPS, rl.Burst, limitKey)
	app.Router = NewRouter(log, cfg.HTTPServer, cfg.JWT.Secret, svc, metrics.New(), app.Limiter)

	return app, nil
}

func (a *App) setupCache(ctx context.Context) (cache.ItemCache, error) {
	switch a.Config.Cache.Driver {
	case config.CacheNone:
		return nil, nil
	case config.CacheRedis:
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     a.Config.Cache.RedisAddr,
			Password: a.Config.Cache.RedisPassword,
			DB:       a.Config.Cache.RedisDB,
		})
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return cache.NewRedis(a.Redis, a.Config.Cache.Key, a.Config.Cache.TTL), nil
	case config.CacheMemory, "":
		return cache.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", a.Config.Cache.Driver)
	}
}

// Start запускает фоновые задачи: обновление кэша и чистку ограничителя.
func (a *App) Start(ctx context.Context) {
	if a.Refresher != nil {
		a.Refresher.Start()
	}
	go func() {
		ticker := time.NewTicker(limiterIdle)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.Limiter.Cleanup(limiterIdle)
			}
		}
	}()
}

// Close останавливает фоновые задачи и закрывает подключения.
func (a *App) Close() {
	if a.Refresher != nil {
		<-a.Refresher.Stop().Done()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("failed to close redis", slog.Any("error", err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("failed to close database", slog.Any("error", err))
	}
}

// DSN собирает строку подключения к Postgres; extra дописывается в параметры запроса.
func DSN(db config.DatabaseConfig, extra ...string) string {
	query := url.Values{}
	query.Set("sslmode", "disable")
	for i := 0; i+1 < len(extra); i += 2 {
		query.Set(extra[i], extra[i+1])
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:     "/" + db.Name,
		RawQuery: query.Encode(),
	}
	return u.String()
}
