package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

// CancelWindow — сколько времени после оформления заказ можно отменить.
const CancelWindow = 10 * time.Minute

// сколько товаров заказа ищется параллельно
const lookupLimit = 8

// OrderService — оформление, просмотр и отмена заказов.
type OrderService interface {
	Place(ctx context.Context, apiKey string, order models.Order) models.Result[models.Order]
	Get(ctx context.Context, apiKey string, receipt int64) models.Result[models.Order]
	GetAll(ctx context.Context, apiKey string) models.Result[models.Orders]
	Cancel(ctx context.Context, apiKey string, receipt int64) models.Result[models.Order]
}

type orderService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	itemRepo  storage.ItemStorage
	orderRepo storage.OrderStorage
	now       func() time.Time
}

func NewOrderService(log *slog.Logger, userRepo storage.UserStorage, itemRepo storage.ItemStorage, orderRepo storage.OrderStorage, now func() time.Time) OrderService {
	return &orderService{
		log:       log,
		userRepo:  userRepo,
		itemRepo:  itemRepo,
		orderRepo: orderRepo,
		now:       now,
	}
}

// Place оформляет заказ на пользователя apiKey.
// От клиента берётся только список товаров: сумма, квитанция и имя заполняются здесь.
// Пока не найдены все товары и пользователь, в хранилище ничего не пишется.
func (s *orderService) Place(ctx context.Context, apiKey string, order models.Order) models.Result[models.Order] {
	const op = "service.OrderService.Place"
	logger := s.log.With(slog.String("op", op), slog.String("apiKey", apiKey))

	prices, err := s.resolvePrices(ctx, order.Items)
	if err != nil {
		logger.Error("failed to resolve items", slog.Any("error", err))
		return models.FailWith[models.Order](err)
	}

	total := decimal.Zero
	for i, id := range order.Items {
		if prices[i] == nil {
			logger.Warn("order references unknown item", slog.Int64("itemID", id))
			return models.Fail[models.Order](fmt.Sprintf(msgInvalidItemID, id))
		}
		total = total.Add(*prices[i])
	}

	user, err := s.userRepo.GetUserByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Fail[models.Order](msgUserNotExists)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return models.FailWith[models.Order](err)
	}

	// квитанция строго больше уже выданных, даже если заказы пришли в одну миллисекунду
	now := s.now()
	receipt := now.UnixMilli()
	if last := user.Orders.LastReceipt(); receipt <= last {
		receipt = last + 1
	}
	placed := models.Order{
		Receipt:   receipt,
		User:      user.DisplayName(),
		Items:     slices.Clone(order.Items),
		Total:     total,
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	if _, err := s.orderRepo.AppendOrder(ctx, apiKey, placed); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Error("order append was not confirmed")
			return models.Fail[models.Order](msgUnknownError)
		}
		logger.Error("failed to append order", slog.Any("error", err))
		return models.FailWith[models.Order](err)
	}

	logger.Info("order placed", slog.Int64("receipt", placed.Receipt), slog.String("total", placed.Total.String()))
	return models.Ok(placed, msgOrderPlaced)
}

// resolvePrices ищет цены всех товаров; для несуществующего товара на его месте nil.
func (s *orderService) resolvePrices(ctx context.Context, ids []int64) ([]*decimal.Decimal, error) {
	prices := make([]*decimal.Decimal, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupLimit)
	for i, id := range ids {
		g.Go(func() error {
			item, err := s.itemRepo.GetItemByID(gctx, id)
			if err != nil {
				if errors.Is(err, storage.ErrItemNotFound) {
					return nil
				}
				return fmt.Errorf("item %d: %w", id, err)
			}
			prices[i] = &item.Price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prices, nil
}

func (s *orderService) Get(ctx context.Context, apiKey string, receipt int64) models.Result[models.Order] {
	order, _, res := s.find(ctx, apiKey, receipt)
	if res != nil {
		return *res
	}
	return models.Ok(order, "")
}

func (s *orderService) GetAll(ctx context.Context, apiKey string) models.Result[models.Orders] {
	const op = "service.OrderService.GetAll"

	orders, err := s.orderRepo.GetOrders(ctx, apiKey)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.Fail[models.Orders](msgUserNotExists)
		}
		s.log.Error("failed to get orders", slog.String("op", op), slog.Any("error", err))
		return models.FailWith[models.Orders](err)
	}
	if orders == nil {
		orders = models.Orders{}
	}
	return models.Ok(orders, "")
}

// Cancel отменяет заказ, если с момента оформления прошло не больше CancelWindow.
// Список заказов перезаписывается целиком, параллельная отмена у того же пользователя может потерять обновление.
func (s *orderService) Cancel(ctx context.Context, apiKey string, receipt int64) models.Result[models.Order] {
	const op = "service.OrderService.Cancel"
	logger := s.log.With(slog.String("op", op), slog.String("apiKey", apiKey), slog.Int64("receipt", receipt))

	now := s.now()

	order, orders, res := s.find(ctx, apiKey, receipt)
	if res != nil {
		return *res
	}

	if now.UnixMilli()-receipt > CancelWindow.Milliseconds() {
		logger.Info("cancellation window has passed")
		return models.Fail[models.Order](msgOrderTooOld)
	}

	if _, err := s.orderRepo.ReplaceOrders(ctx, apiKey, orders.Without(receipt)); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Error("order list overwrite was not confirmed")
			return models.Fail[models.Order](msgUnknownError)
		}
		logger.Error("failed to overwrite orders", slog.Any("error", err))
		return models.FailWith[models.Order](err)
	}

	logger.Info("order cancelled")
	return models.Ok(order, msgOrderCancelled)
}

// find возвращает заказ и весь список; при неудаче — готовый конверт ошибки.
func (s *orderService) find(ctx context.Context, apiKey string, receipt int64) (models.Order, models.Orders, *models.Result[models.Order]) {
	const op = "service.OrderService.find"

	orders, err := s.orderRepo.GetOrders(ctx, apiKey)
	if err != nil {
		var res models.Result[models.Order]
		if errors.Is(err, storage.ErrUserNotFound) {
			res = models.Fail[models.Order](msgUserNotExists)
		} else {
			s.log.Error("failed to get orders", slog.String("op", op), slog.Any("error", err))
			res = models.FailWith[models.Order](err)
		}
		return models.Order{}, nil, &res
	}

	order, ok := orders.Find(receipt)
	if !ok {
		res := models.Fail[models.Order](msgInvalidReceipt)
		return models.Order{}, nil, &res
	}
	return order, orders, nil
}
