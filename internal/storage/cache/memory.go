package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/linemk/storefront/internal/domain/models"
)

// Memory хранит снимок в памяти процесса.
type Memory struct {
	mu    sync.RWMutex
	items []models.Item
	warm  bool
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Items(_ context.Context) ([]models.Item, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.warm {
		return nil, false, nil
	}
	return slices.Clone(m.items), true, nil
}

func (m *Memory) Replace(_ context.Context, items []models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = slices.Clone(items)
	m.warm = true
	return nil
}

func (m *Memory) Append(_ context.Context, item models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.warm {
		m.items = append(m.items, item)
	}
	return nil
}

func (m *Memory) Invalidate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.warm = false
	return nil
}
