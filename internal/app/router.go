package app

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/linemk/storefront/internal/app/handlers"
	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/lib/logger/handlers/urllog"
	"github.com/linemk/storefront/internal/lib/metrics"
	"github.com/linemk/storefront/internal/lib/ratelimit"
	"github.com/linemk/storefront/internal/service"
)

// Services — всё, что нужно роутеру от слоя бизнес-логики.
type Services struct {
	Users    service.UserService
	Items    service.ItemService
	Orders   service.OrderService
	Sessions service.SessionService
	DB       handlers.Pinger
}

// NewRouter собирает middleware и маршруты.
func NewRouter(log *slog.Logger, cfg config.HTTPServerConfig, jwtSecret string, svc Services, m *metrics.Registry, limiter *ratelimit.Limiter) http.Handler {
	router := chi.NewRouter()

	compressor := middleware.NewCompressor(cfg.CompressionLevel, "application/json", "text/plain")
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(m.Middleware)
	router.Use(jwtmiddleware.New(jwtSecret))
	router.Use(limiter.Handler)
	router.Use(compressor.Handler)

	admin := handlers.NewAdminGuard(svc.Users, cfg.ForbiddenStatus)

	router.Get("/health", handlers.HealthHandler(log, svc.DB))
	router.Method(http.MethodGet, "/metrics", m.Handler())

	router.Post("/session", handlers.SessionHandler(log, svc.Sessions))

	router.Route("/user", func(r chi.Router) {
		r.Post("/", handlers.CreateUserHandler(log, svc.Users))
		r.Put("/", handlers.UpdateUserHandler(log, svc.Users))
		r.Put("/promote", handlers.PromoteUserHandler(log, svc.Users))
		r.Get("/{apiKey}", handlers.GetUserHandler(log, svc.Users))
		r.Delete("/{apiKey}", handlers.RemoveUserHandler(log, svc.Users))
	})

	router.Route("/item", func(r chi.Router) {
		r.Post("/", handlers.CreateItemHandler(log, svc.Items, admin))
		r.Get("/", handlers.ListItemsHandler(log, svc.Items))
		r.Put("/", handlers.UpdateItemHandler(log, svc.Items, admin))
		r.Delete("/", handlers.RemoveItemHandler(log, svc.Items, admin))
		r.Get("/cached", handlers.CachedItemsHandler(log, svc.Items))
		r.Get("/tagged/{tag}", handlers.TaggedItemsHandler(log, svc.Items))
		r.Get("/{id}", handlers.GetItemHandler(log, svc.Items))
	})

	router.Route("/order", func(r chi.Router) {
		r.Post("/", handlers.PlaceOrderHandler(log, svc.Orders))
		r.Delete("/", handlers.CancelOrderHandler(log, svc.Orders))
		r.Get("/{apiKey}", handlers.ListOrdersHandler(log, svc.Orders))
		r.Get("/{apiKey}/{receipt}", handlers.GetOrderHandler(log, svc.Orders))
	})

	return router
}

// limitKey — ключ ограничителя: владелец токена, иначе пусто (тогда берётся адрес).
func limitKey(r *http.Request) string {
	apiKey, _ := jwtmiddleware.FromContext(r.Context())
	return apiKey
}
