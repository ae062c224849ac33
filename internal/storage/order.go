package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/linemk/storefront/internal/domain/models"
)

// OrderStorage описывает методы для работы с заказами.
// Заказы не имеют своей таблицы и лежат списком в колонке users.orders.
type OrderStorage interface {
	GetOrders(ctx context.Context, apiKey string) (models.Orders, error)
	// AppendOrder атомарно дописывает заказ в конец списка и возвращает новый список.
	// Если пользователя нет или квитанция уже занята, возвращается ErrUserNotFound.
	AppendOrder(ctx context.Context, apiKey string, order models.Order) (models.Orders, error)
	// ReplaceOrders полностью перезаписывает список заказов.
	ReplaceOrders(ctx context.Context, apiKey string, orders models.Orders) (models.Orders, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) GetOrders(ctx context.Context, apiKey string) (models.Orders, error) {
	row := r.db.QueryRowContext(ctx, "SELECT orders FROM users WHERE api_key = $1", apiKey)
	return scanOrders(row)
}

func (r *orderRepository) AppendOrder(ctx context.Context, apiKey string, order models.Order) (models.Orders, error) {
	payload, err := json.Marshal([]models.Order{order})
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}
	// заказ с той же квитанцией не дописывается: строк не вернётся
	row := r.db.QueryRowContext(ctx,
		"UPDATE users SET orders = orders || $1::jsonb "+
			"WHERE api_key = $2 AND NOT orders @> jsonb_build_array(jsonb_build_object('receipt', $3::bigint)) "+
			"RETURNING orders",
		string(payload), apiKey, order.Receipt,
	)
	return scanOrders(row)
}

func (r *orderRepository) ReplaceOrders(ctx context.Context, apiKey string, orders models.Orders) (models.Orders, error) {
	row := r.db.QueryRowContext(ctx,
		"UPDATE users SET orders = $1::jsonb WHERE api_key = $2 RETURNING orders",
		orders, apiKey,
	)
	return scanOrders(row)
}

func scanOrders(row rowScanner) (models.Orders, error) {
	var orders models.Orders
	if err := row.Scan(&orders); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return orders, nil
}
