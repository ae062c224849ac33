package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
	"github.com/linemk/storefront/internal/storage/cache"
)

// ItemService — операции над каталогом товаров.
type ItemService interface {
	Create(ctx context.Context, item models.Item) models.Result[models.Item]
	Get(ctx context.Context, id int64) models.Result[models.Item]
	// GetAll сканирует каталог целиком и заменяет снимок в кэше.
	GetAll(ctx context.Context) models.Result[[]models.Item]
	// GetTagged фильтрует каталог по тегу в хранилище, кэш не используется.
	GetTagged(ctx context.Context, tag string) models.Result[[]models.Item]
	Update(ctx context.Context, id int64, item models.Item) models.Result[models.Item]
	Remove(ctx context.Context, id int64) models.Result[models.Item]
	// Cached отдаёт текущий снимок кэша без обращения к хранилищу.
	Cached(ctx context.Context) models.Result[[]models.Item]
	// Refresh перечитывает каталог в кэш.
	Refresh(ctx context.Context) error
}

type itemService struct {
	log       *slog.Logger
	itemRepo  storage.ItemStorage
	itemCache cache.ItemCache
}

// NewItemService создаёт сервис товаров. itemCache может быть nil — тогда кэша нет.
// Кэш при создании не прогревается.
func NewItemService(log *slog.Logger, itemRepo storage.ItemStorage, itemCache cache.ItemCache) ItemService {
	return &itemService{
		log:       log,
		itemRepo:  itemRepo,
		itemCache: itemCache,
	}
}

func (s *itemService) Create(ctx context.Context, item models.Item) models.Result[models.Item] {
	const op = "service.ItemService.Create"
	logger := s.log.With(slog.String("op", op))

	created, err := s.itemRepo.CreateItem(ctx, &item)
	if err != nil {
		logger.Error("failed to create item", slog.Any("error", err))
		return models.FailWith[models.Item](err)
	}

	if s.itemCache != nil {
		if err := s.itemCache.Append(ctx, *created); err != nil {
			logger.Warn("failed to append item to cache", slog.Any("error", err))
		}
	}

	logger.Info("item created", slog.Int64("id", created.ID))
	return models.Ok(*created, "")
}

func (s *itemService) Get(ctx context.Context, id int64) models.Result[models.Item] {
	const op = "service.ItemService.Get"

	item, err := s.itemRepo.GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return models.Fail[models.Item](msgItemNotFound)
		}
		s.log.Error("failed to get item", slog.String("op", op), slog.Int64("id", id), slog.Any("error", err))
		return models.FailWith[models.Item](err)
	}
	return models.Ok(*item, "")
}

func (s *itemService) GetAll(ctx context.Context) models.Result[[]models.Item] {
	const op = "service.ItemService.GetAll"
	logger := s.log.With(slog.String("op", op))

	items, err := s.itemRepo.ListItems(ctx)
	if err != nil {
		logger.Error("failed to list items", slog.Any("error", err))
		return models.FailWith[[]models.Item](err)
	}

	if s.itemCache != nil {
		if err := s.itemCache.Replace(ctx, items); err != nil {
			logger.Warn("failed to replace item cache", slog.Any("error", err))
		}
	}
	return models.Ok(items, "")
}

func (s *itemService) GetTagged(ctx context.Context, tag string) models.Result[[]models.Item] {
	const op = "service.ItemService.GetTagged"

	items, err := s.itemRepo.ListItemsByTag(ctx, tag)
	if err != nil {
		s.log.Error("failed to list tagged items", slog.String("op", op), slog.String("tag", tag), slog.Any("error", err))
		return models.FailWith[[]models.Item](err)
	}
	return models.Ok(items, "")
}

func (s *itemService) Update(ctx context.Context, id int64, item models.Item) models.Result[models.Item] {
	const op = "service.ItemService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("id", id))

	if exists := s.Get(ctx, id); !exists.Success {
		if exists.Err != nil {
			return exists
		}
		return models.Fail[models.Item](msgItemNotExists)
	}

	updated, err := s.itemRepo.UpdateItem(ctx, id, &item)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return models.Fail[models.Item](msgItemNotExists)
		}
		logger.Error("failed to update item", slog.Any("error", err))
		return models.FailWith[models.Item](err)
	}

	s.invalidate(ctx, logger)
	logger.Info("item updated")
	return models.Ok(*updated, msgItemUpdated)
}

func (s *itemService) Remove(ctx context.Context, id int64) models.Result[models.Item] {
	const op = "service.ItemService.Remove"
	logger := s.log.With(slog.String("op", op), slog.Int64("id", id))

	if err := s.itemRepo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			return models.Fail[models.Item](msgItemNotExists)
		}
		logger.Error("failed to delete item", slog.Any("error", err))
		return models.FailWith[models.Item](err)
	}

	s.invalidate(ctx, logger)
	logger.Info("item deleted")
	return models.Done[models.Item](msgItemDeleted)
}

func (s *itemService) Cached(ctx context.Context) models.Result[[]models.Item] {
	const op = "service.ItemService.Cached"

	if s.itemCache == nil {
		return models.Fail[[]models.Item](msgCacheEmpty)
	}
	items, ok, err := s.itemCache.Items(ctx)
	if err != nil {
		s.log.Error("failed to read item cache", slog.String("op", op), slog.Any("error", err))
		return models.FailWith[[]models.Item](err)
	}
	if !ok {
		return models.Fail[[]models.Item](msgCacheEmpty)
	}
	return models.Ok(items, "")
}

func (s *itemService) Refresh(ctx context.Context) error {
	if s.itemCache == nil {
		return nil
	}
	items, err := s.itemRepo.ListItems(ctx)
	if err != nil {
		return err
	}
	if err := s.itemCache.Replace(ctx, items); err != nil {
		return err
	}
	s.log.Debug("item cache refreshed", slog.Int("items", len(items)))
	return nil
}

func (s *itemService) invalidate(ctx context.Context, logger *slog.Logger) {
	if s.itemCache == nil {
		return
	}
	if err := s.itemCache.Invalidate(ctx); err != nil {
		logger.Warn("failed to invalidate item cache", slog.Any("error", err))
	}
}
