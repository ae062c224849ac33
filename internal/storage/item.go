package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/linemk/storefront/internal/domain/models"
)

var ErrItemNotFound = errors.New("item not found")

// ItemStorage описывает методы для работы с каталогом товаров.
type ItemStorage interface {
	// CreateItem вставляет товар; идентификатор выдаёт последовательность БД.
	CreateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	// ListItemsByTag возвращает товары, в наборе тегов которых есть tag.
	ListItemsByTag(ctx context.Context, tag string) ([]models.Item, error)
	UpdateItem(ctx context.Context, id int64, item *models.Item) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) ItemStorage {
	return &itemRepository{db: db}
}

const itemColumns = "id, name, description, price, tags"

func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Price, pq.Array(&item.Tags)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item, nil
}

func (r *itemRepository) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	row := r.db.QueryRowContext(ctx,
		"INSERT INTO items (name, description, price, tags) VALUES ($1, $2, $3, $4) RETURNING "+itemColumns,
		item.Name, item.Description, item.Price, pq.Array(item.Tags),
	)
	return scanItem(row)
}

func (r *itemRepository) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE id = $1", id)
	return scanItem(row)
}

func (r *itemRepository) ListItems(ctx context.Context) ([]models.Item, error) {
	return r.list(ctx, "SELECT "+itemColumns+" FROM items ORDER BY id")
}

func (r *itemRepository) ListItemsByTag(ctx context.Context, tag string) ([]models.Item, error) {
	return r.list(ctx, "SELECT "+itemColumns+" FROM items WHERE $1 = ANY(tags) ORDER BY id", tag)
}

func (r *itemRepository) UpdateItem(ctx context.Context, id int64, item *models.Item) (*models.Item, error) {
	row := r.db.QueryRowContext(ctx,
		"UPDATE items SET name = $1, description = $2, price = $3, tags = $4 WHERE id = $5 RETURNING "+itemColumns,
		item.Name, item.Description, item.Price, pq.Array(item.Tags), id,
	)
	return scanItem(row)
}

func (r *itemRepository) DeleteItem(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, ErrItemNotFound)
}

func (r *itemRepository) list(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
