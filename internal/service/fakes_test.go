package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/linemk/storefront/internal/domain/models"
	"github.com/linemk/storefront/internal/storage"
)

var errStoreDown = errors.New("store is down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore держит пользователей, товары и заказы в памяти.
type fakeStore struct {
	mu     sync.Mutex
	users  map[string]*models.User // ключ — apiKey
	items  map[int64]*models.Item
	nextID int64

	// если задано, любая операция возвращает эту ошибку
	fail error
	// если true, AppendOrder/ReplaceOrders ведут себя так, будто запись не подтверждена
	dropWrites bool
}

var (
	_ storage.UserStorage  = (*fakeStore)(nil)
	_ storage.ItemStorage  = (*fakeStore)(nil)
	_ storage.OrderStorage = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*models.User),
		items: make(map[int64]*models.Item),
	}
}

func (f *fakeStore) addUser(u models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.Orders == nil {
		u.Orders = models.Orders{}
	}
	f.users[u.APIKey] = &u
}

func (f *fakeStore) addItem(it models.Item) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	it.ID = f.nextID
	f.items[it.ID] = &it
	return it.ID
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if _, ok := f.users[user.APIKey]; ok {
		return nil, storage.ErrUserExists
	}
	u := *user
	f.users[u.APIKey] = &u
	out := u
	return &out, nil
}

func (f *fakeStore) GetUserByAPIKey(_ context.Context, apiKey string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	u, ok := f.users[apiKey]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, apiKey string, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	u, ok := f.users[apiKey]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	u.FirstName, u.LastName, u.Email = user.FirstName, user.LastName, user.Email
	out := *u
	return &out, nil
}

func (f *fakeStore) DeleteUser(_ context.Context, apiKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	if _, ok := f.users[apiKey]; !ok {
		return storage.ErrUserNotFound
	}
	delete(f.users, apiKey)
	return nil
}

func (f *fakeStore) SetAdmin(_ context.Context, apiKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	u, ok := f.users[apiKey]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Admin = true
	return nil
}

func (f *fakeStore) IsAdmin(_ context.Context, apiKey string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return false, f.fail
	}
	u, ok := f.users[apiKey]
	if !ok {
		return false, storage.ErrUserNotFound
	}
	return u.Admin, nil
}

func (f *fakeStore) CreateItem(_ context.Context, item *models.Item) (*models.Item, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	id := f.addItem(*item)
	out := *item
	out.ID = id
	return &out, nil
}

func (f *fakeStore) GetItemByID(_ context.Context, id int64) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	it, ok := f.items[id]
	if !ok {
		return nil, storage.ErrItemNotFound
	}
	out := *it
	return &out, nil
}

func (f *fakeStore) ListItems(_ context.Context) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	items := make([]models.Item, 0, len(f.items))
	for _, it := range f.items {
		items = append(items, *it)
	}
	slices.SortFunc(items, func(a, b models.Item) int { return int(a.ID - b.ID) })
	return items, nil
}

func (f *fakeStore) ListItemsByTag(ctx context.Context, tag string) ([]models.Item, error) {
	all, err := f.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	tagged := make([]models.Item, 0)
	for _, it := range all {
		if it.HasTag(tag) {
			tagged = append(tagged, it)
		}
	}
	return tagged, nil
}

func (f *fakeStore) UpdateItem(_ context.Context, id int64, item *models.Item) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	if _, ok := f.items[id]; !ok {
		return nil, storage.ErrItemNotFound
	}
	it := *item
	it.ID = id
	f.items[id] = &it
	out := it
	return &out, nil
}

func (f *fakeStore) DeleteItem(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	if _, ok := f.items[id]; !ok {
		return storage.ErrItemNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) GetOrders(_ context.Context, apiKey string) (models.Orders, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	u, ok := f.users[apiKey]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return slices.Clone(u.Orders), nil
}

func (f *fakeStore) AppendOrder(_ context.Context, apiKey string, order models.Order) (models.Orders, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	u, ok := f.users[apiKey]
	if !ok || f.dropWrites {
		return nil, storage.ErrUserNotFound
	}
	// как и в Postgres: занятая квитанция не дописывается
	if _, taken := u.Orders.Find(order.Receipt); taken {
		return nil, storage.ErrUserNotFound
	}
	u.Orders = append(u.Orders, order)
	return slices.Clone(u.Orders), nil
}

func (f *fakeStore) ReplaceOrders(_ context.Context, apiKey string, orders models.Orders) (models.Orders, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	u, ok := f.users[apiKey]
	if !ok || f.dropWrites {
		return nil, storage.ErrUserNotFound
	}
	u.Orders = slices.Clone(orders)
	return slices.Clone(u.Orders), nil
}

// failingCache — кэш, у которого ломается каждая операция.
type failingCache struct{}

func (failingCache) Items(context.Context) ([]models.Item, bool, error) {
	return nil, false, errStoreDown
}
func (failingCache) Replace(context.Context, []models.Item) error { return errStoreDown }
func (failingCache) Append(context.Context, models.Item) error   { return errStoreDown }
func (failingCache) Invalidate(context.Context) error             { return errStoreDown }
