package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
)

// OrderPayload — от клиента берётся только список товаров.
type OrderPayload struct {
	Items []int64 `json:"items"`
}

type PlaceOrderRequest struct {
	APIKey string        `json:"apiKey" validate:"required"`
	Order  *OrderPayload `json:"order" validate:"required"`
}

type CancelOrderRequest struct {
	APIKey  string `json:"apiKey" validate:"required"`
	Receipt *int64 `json:"receipt" validate:"required"`
}

// PlaceOrderHandler обрабатывает POST /order
func PlaceOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PlaceOrderHandler"
		logger := log.With(slog.String("op", op))

		var req PlaceOrderRequest
		if !decodeRequest(w, r, logger, &req, &req.APIKey) {
			return
		}

		order, err := models.NewOrder(req.Order.Items)
		if err != nil {
			logger.Info("invalid order", slog.Any("error", err))
			fail(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		respond(w, logger, http.StatusOK, orders.Place(r.Context(), req.APIKey, order))
	}
}

// ListOrdersHandler обрабатывает GET /order/{apiKey}
func ListOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.ListOrdersHandler"))
		respond(w, logger, http.StatusOK, orders.GetAll(r.Context(), chi.URLParam(r, "apiKey")))
	}
}

// GetOrderHandler обрабатывает GET /order/{apiKey}/{receipt}
func GetOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		receipt, err := strconv.ParseInt(chi.URLParam(r, "receipt"), 10, 64)
		if err != nil {
			logger.Info("invalid receipt", slog.String("receipt", chi.URLParam(r, "receipt")))
			fail(w, logger, http.StatusBadRequest, badRequest)
			return
		}

		respond(w, logger, http.StatusOK, orders.Get(r.Context(), chi.URLParam(r, "apiKey"), receipt))
	}
}

// CancelOrderHandler обрабатывает DELETE /order
func CancelOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CancelOrderHandler"
		logger := log.With(slog.String("op", op))

		var req CancelOrderRequest
		if !decodeRequest(w, r, logger, &req, &req.APIKey) {
			return
		}

		respond(w, logger, http.StatusOK, orders.Cancel(r.Context(), req.APIKey, *req.Receipt))
	}
}
