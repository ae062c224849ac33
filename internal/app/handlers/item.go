package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/service"
)

// ItemPayload — товар в теле запроса.
type ItemPayload struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Tags        []string        `json:"tags"`
}

func (p *ItemPayload) toItem() (models.Item, error) {
	return models.NewItem(p.Name, p.Description, p.Price, p.Tags)
}

type CreateItemRequest struct {
	APIKey string       `json:"apiKey" validate:"required"`
	Item   *ItemPayload `json:"item" validate:"required"`
}

type UpdateItemRequest struct {
	APIKey string       `json:"apiKey" validate:"required"`
	ID     *int64       `json:"id" validate:"required"`
	Item   *ItemPayload `json:"item" validate:"required"`
}

type RemoveItemRequest struct {
	APIKey string `json:"apiKey" validate:"required"`
	ID     *int64 `json:"id" validate:"required"`
}

// CreateItemHandler обрабатывает POST /item
func CreateItemHandler(log *slog.Logger, items service.ItemService, admin *AdminGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateItemHandler"
		logger := log.With(slog.String("op", op))

		var req CreateItemRequest
		if !decodeRequest(w, r, logger, &req, &req.APIKey) {
			return
		}
		if !admin.Allow(w, r, logger, req.APIKey) {
			return
		}

		item, err := req.Item.toItem()
		if err != nil {
			logger.Info("invalid item", slog.Any("error", err))
			fail(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		respond(w, logger, http.StatusCreated, items.Create(r.Context(), item))
	}
}

// GetItemHandler обрабатывает GET /item/{id}
func GetItemHandler(log *slog.Logger, items service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetItemHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			logger.Info("invalid item id", slog.String("id", chi.URLParam(r, "id")))
			fail(w, logger, http.StatusBadRequest, badRequest)
			return
		}

		respond(w, logger, http.StatusOK, items.Get(r.Context(), id))
	}
}

// ListItemsHandler обрабатывает GET /item
func ListItemsHandler(log *slog.Logger, items service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.ListItemsHandler"))
		respond(w, logger, http.StatusOK, items.GetAll(r.Context()))
	}
}

// TaggedItemsHandler обрабатывает GET /item/tagged/{tag}
func TaggedItemsHandler(log *slog.Logger, items service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.TaggedItemsHandler"))
		respond(w, logger, http.StatusOK, items.GetTagged(r.Context(), chi.URLParam(r, "tag")))
	}
}

// CachedItemsHandler обрабатывает GET /item/cached
func CachedItemsHandler(log *slog.Logger, items service.ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(slog.String("op", "handlers.CachedItemsHandler"))
		respond(w, logger, http.StatusOK, items.Cached(r.Context()))
	}
}

// UpdateItemHandler обрабатывает PUT /item
func UpdateItemHandler(log *slog.Logger, items service.ItemService, admin *AdminGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateItemHandler"
		logger := log.With(slog.String("op", op))

		var req UpdateItemRequest
		if !decodeRequest(w, r, logger, &req, &req.APIKey) {
			return
		}
		if !admin.Allow(w, r, logger, req.APIKey) {
			return
		}

		item, err := req.Item.toItem()
		if err != nil {
			logger.Info("invalid item", slog.Any("error", err))
			fail(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		respond(w, logger, http.StatusOK, items.Update(r.Context(), *req.ID, item))
	}
}

// RemoveItemHandler обрабатывает DELETE /item
func RemoveItemHandler(log *slog.Logger, items service.ItemService, admin *AdminGuard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RemoveItemHandler"
		logger := log.With(slog.String("op", op))

		var req RemoveItemRequest
		if !decodeRequest(w, r, logger, &req, &req.APIKey) {
			return
		}
		if !admin.Allow(w, r, logger, req.APIKey) {
			return
		}

		respond(w, logger, http.StatusOK, items.Remove(r.Context(), *req.ID))
	}
}
