package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrNegativePrice = errors.New("price must not be negative")

func init() {
	// цены и суммы в JSON — числа, а не строки
	decimal.MarshalJSONWithoutQuotes = true
}

// Item представляет товар каталога
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Tags        []string        `json:"tags"`
}

// NewItem проверяет входные данные и собирает товар без идентификатора.
// Теги обрезаются по пробелам, пустые отбрасываются, дубликаты схлопываются.
func NewItem(name, description string, price decimal.Decimal, tags []string) (Item, error) {
	it := Item{
		Name:        strings.TrimSpace(name),
		Description: description,
		Price:       price,
		Tags:        normalizeTags(tags),
	}
	if err := validate.Struct(it); err != nil {
		return Item{}, fmt.Errorf("invalid item: %w", err)
	}
	if it.Price.IsNegative() {
		return Item{}, fmt.Errorf("invalid item: %w", ErrNegativePrice)
	}
	return it, nil
}

// HasTag сообщает, входит ли tag в набор тегов товара.
func (i Item) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
