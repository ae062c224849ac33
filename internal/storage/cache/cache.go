// Package cache содержит кэш каталога товаров.
// Кэш не перестраивается сам: его наполняет и сбрасывает сервис товаров.
package cache

import (
	"context"

	"github.com/linemk/storefront/internal/domain/models"
)

// ItemCache — снимок каталога товаров.
type ItemCache interface {
	// Items возвращает снимок; ok == false, если кэш холодный.
	Items(ctx context.Context) (items []models.Item, ok bool, err error)
	// Replace целиком заменяет снимок.
	Replace(ctx context.Context, items []models.Item) error
	// Append дописывает товар в тёплый кэш; холодный кэш не трогается.
	Append(ctx context.Context, item models.Item) error
	Invalidate(ctx context.Context) error
}
