package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Order представляет заказ, встроенный в запись пользователя.
// Receipt — момент оформления в миллисекундах, он же идентификатор заказа.
type Order struct {
	Receipt   int64           `json:"receipt"`
	User      string          `json:"user"`
	Items     []int64         `json:"items" validate:"required,min=1,dive,gt=0"`
	Total     decimal.Decimal `json:"total"`
	Timestamp string          `json:"timestamp"`
}

// NewOrder проверяет список товаров нового заказа.
// Остальные поля заполняет сервис в момент оформления.
func NewOrder(items []int64) (Order, error) {
	o := Order{Items: items}
	if err := validate.Struct(o); err != nil {
		return Order{}, fmt.Errorf("invalid order: %w", err)
	}
	return o, nil
}

// Orders — упорядоченный список заказов пользователя, хранится в колонке JSONB.
type Orders []Order

// Find ищет заказ по квитанции.
func (o Orders) Find(receipt int64) (Order, bool) {
	for _, order := range o {
		if order.Receipt == receipt {
			return order, true
		}
	}
	return Order{}, false
}

// Without возвращает новый список без заказа с указанной квитанцией.
func (o Orders) Without(receipt int64) Orders {
	out := make(Orders, 0, len(o))
	for _, order := range o {
		if order.Receipt != receipt {
			out = append(out, order)
		}
	}
	return out
}

// LastReceipt возвращает наибольшую квитанцию в списке, 0 для пустого списка.
func (o Orders) LastReceipt() int64 {
	var last int64
	for _, order := range o {
		last = max(last, order.Receipt)
	}
	return last
}

// Value сериализует список для записи в JSONB. nil пишется как пустой массив.
// Возвращается строка: lib/pq передаёт []byte как bytea, а не как json.
func (o Orders) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]Order(o))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan читает список из JSONB.
func (o *Orders) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = Orders{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("orders: unsupported type %T", src)
	}
	var list []Order
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("orders: %w", err)
	}
	if list == nil {
		list = []Order{}
	}
	*o = list
	return nil
}
