package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/linemk/storefront/internal/domain/models"
)

// Redis хранит снимок одним JSON-значением под ключом key.
// Снимок общий для всех экземпляров сервиса.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis создаёт кэш поверх готового клиента. ttl == 0 — без срока жизни.
func NewRedis(client *redis.Client, key string, ttl time.Duration) *Redis {
	return &Redis{client: client, key: key, ttl: ttl}
}

func (r *Redis) Items(ctx context.Context) ([]models.Item, bool, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache: get %s: %w", r.key, err)
	}
	var items []models.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", r.key, err)
	}
	return items, true, nil
}

func (r *Redis) Replace(ctx context.Context, items []models.Item) error {
	if items == nil {
		items = []models.Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", r.key, err)
	}
	return nil
}

// Append перечитывает снимок и записывает его обратно с новым товаром.
// Между чтением и записью снимок не блокируется, гонку закрывает следующий Replace.
func (r *Redis) Append(ctx context.Context, item models.Item) error {
	items, ok, err := r.Items(ctx)
	if err != nil || !ok {
		return err
	}
	return r.Replace(ctx, append(items, item))
}

func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("cache: del %s: %w", r.key, err)
	}
	return nil
}
