package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/storefront/internal/app"
	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/domain/models"
	security "github.com/linemk/storefront/internal/jwt-new"
	"github.com/linemk/storefront/internal/lib/metrics"
	"github.com/linemk/storefront/internal/lib/ratelimit"
	"github.com/linemk/storefront/internal/service"
)

const testSecret = "router-secret"

// stubServices отвечает фиксированными конвертами и запоминает последний вызов.
type stubServices struct {
	last string
}

func (s *stubServices) Create(_ context.Context, u models.User) models.Result[models.User] {
	s.last = "user.create"
	return models.Ok(models.User{APIKey: "k1", FirstName: u.FirstName}, "")
}
func (s *stubServices) Get(_ context.Context, apiKey string) models.Result[models.User] {
	s.last = "user.get:" + apiKey
	return models.Ok(models.User{APIKey: apiKey}, "")
}
func (s *stubServices) Update(_ context.Context, apiKey string, _ models.User) models.Result[models.User] {
	s.last = "user.update:" + apiKey
	return models.Ok(models.User{APIKey: apiKey}, "")
}
func (s *stubServices) Remove(_ context.Context, apiKey string) models.Result[models.User] {
	s.last = "user.remove:" + apiKey
	return models.Done[models.User]("")
}
func (s *stubServices) Promote(_ context.Context, from, to string) models.Result[models.User] {
	s.last = "user.promote:" + from + ">" + to
	return models.Done[models.User]("")
}
func (s *stubServices) CheckAdmin(_ context.Context, apiKey string) bool { return apiKey == "admin" }

type stubItems struct{ last *string }

func (s stubItems) Create(context.Context, models.Item) models.Result[models.Item] {
	*s.last = "item.create"
	return models.Ok(models.Item{ID: 1}, "")
}
func (s stubItems) Get(_ context.Context, id int64) models.Result[models.Item] {
	*s.last = "item.get"
	return models.Ok(models.Item{ID: id}, "")
}
func (s stubItems) GetAll(context.Context) models.Result[[]models.Item] {
	*s.last = "item.all"
	items := make([]models.Item, 0, 50)
	for i := 0; i < 50; i++ {
		items = append(items, models.Item{ID: int64(i + 1), Name: "Repeated item name", Tags: []string{}})
	}
	return models.Ok(items, "")
}
func (s stubItems) GetTagged(_ context.Context, tag string) models.Result[[]models.Item] {
	*s.last = "item.tagged:" + tag
	return models.Ok([]models.Item{}, "")
}
func (s stubItems) Update(context.Context, int64, models.Item) models.Result[models.Item] {
	*s.last = "item.update"
	return models.Ok(models.Item{}, "")
}
func (s stubItems) Remove(context.Context, int64) models.Result[models.Item] {
	*s.last = "item.remove"
	return models.Done[models.Item]("")
}
func (s stubItems) Cached(context.Context) models.Result[[]models.Item] {
	*s.last = "item.cached"
	return models.Fail[[]models.Item]("Item cache is empty.")
}
func (s stubItems) Refresh(context.Context) error { return nil }

type stubOrders struct{ last *string }

func (s stubOrders) Place(_ context.Context, apiKey string, _ models.Order) models.Result[models.Order] {
	*s.last = "order.place:" + apiKey
	return models.Ok(models.Order{}, "")
}
func (s stubOrders) Get(_ context.Context, apiKey string, receipt int64) models.Result[models.Order] {
	*s.last = "order.get:" + apiKey
	return models.Ok(models.Order{Receipt: receipt}, "")
}
func (s stubOrders) GetAll(_ context.Context, apiKey string) models.Result[models.Orders] {
	*s.last = "order.all:" + apiKey
	return models.Ok(models.Orders{}, "")
}
func (s stubOrders) Cancel(_ context.Context, apiKey string, _ int64) models.Result[models.Order] {
	*s.last = "order.cancel:" + apiKey
	return models.Ok(models.Order{}, "")
}

type stubSessions struct{}

func (stubSessions) Login(_ context.Context, apiKey string) models.Result[service.Session] {
	return models.Ok(service.Session{Token: "t-" + apiKey}, "")
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newTestRouter(t *testing.T, rl config.RateLimitConfig) (http.Handler, *stubServices) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := &stubServices{}
	svc := app.Services{
		Users:    users,
		Items:    stubItems{last: &users.last},
		Orders:   stubOrders{last: &users.last},
		Sessions: stubSessions{},
		DB:       okPinger{},
	}
	cfg := config.HTTPServerConfig{ForbiddenStatus: http.StatusForbidden, CompressionLevel: 5, RateLimit: rl}
	limiter := ratelimit.New(log, rl.RPS, rl.Burst, nil)
	return app.NewRouter(log, cfg, testSecret, svc, metrics.New(), limiter), users
}

func do(h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Routes(t *testing.T) {
	h, users := newTestRouter(t, config.RateLimitConfig{})

	tests := []struct {
		method, target, body string
		status               int
		call                 string
	}{
		{http.MethodPost, "/user", `{"user":{"firstName":"A","lastName":"B","email":"a@b.co"}}`, http.StatusCreated, "user.create"},
		{http.MethodGet, "/user/k1", "", http.StatusOK, "user.get:k1"},
		{http.MethodPut, "/user", `{"user":{"apiKey":"k1","firstName":"A","lastName":"B","email":"a@b.co"}}`, http.StatusOK, "user.update:k1"},
		{http.MethodPut, "/user/promote", `{"apiKey":"admin","promoteKey":"k1"}`, http.StatusOK, "user.promote:admin>k1"},
		{http.MethodDelete, "/user/k1", "", http.StatusOK, "user.remove:k1"},
		{http.MethodPost, "/item", `{"apiKey":"admin","item":{"name":"Mug","price":1}}`, http.StatusCreated, "item.create"},
		{http.MethodGet, "/item/cached", "", http.StatusOK, "item.cached"},
		{http.MethodGet, "/item/tagged/kitchen", "", http.StatusOK, "item.tagged:kitchen"},
		{http.MethodGet, "/item/5", "", http.StatusOK, "item.get"},
		{http.MethodPut, "/item", `{"apiKey":"admin","id":5,"item":{"name":"Mug","price":1}}`, http.StatusOK, "item.update"},
		{http.MethodDelete, "/item", `{"apiKey":"admin","id":5}`, http.StatusOK, "item.remove"},
		{http.MethodPost, "/order", `{"apiKey":"k1","order":{"items":[1]}}`, http.StatusOK, "order.place:k1"},
		{http.MethodGet, "/order/k1", "", http.StatusOK, "order.all:k1"},
		{http.MethodGet, "/order/k1/123", "", http.StatusOK, "order.get:k1"},
		{http.MethodDelete, "/order", `{"apiKey":"k1","receipt":123}`, http.StatusOK, "order.cancel:k1"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			users.last = ""
			rr := do(h, tt.method, tt.target, tt.body, nil)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
			assert.Equal(t, tt.call, users.last)
		})
	}
}

func TestRouter_AdminForbidden(t *testing.T) {
	h, users := newTestRouter(t, config.RateLimitConfig{})

	rr := do(h, http.MethodPost, "/item", `{"apiKey":"someone","item":{"name":"Mug","price":1}}`, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, users.last)
	assert.Contains(t, rr.Body.String(), "Requesting user must be an admin")
}

func TestRouter_SessionTokenFillsAPIKey(t *testing.T) {
	h, users := newTestRouter(t, config.RateLimitConfig{})

	rr := do(h, http.MethodPost, "/session", `{"apiKey":"k9"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	token, err := security.NewToken("k9", testSecret, time.Now(), time.Hour)
	require.NoError(t, err)

	rr = do(h, http.MethodPost, "/order", `{"order":{"items":[1]}}`, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "order.place:k9", users.last)

	rr = do(h, http.MethodGet, "/item", "", map[string]string{"Authorization": "Bearer broken"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_BrotliCompression(t *testing.T) {
	h, _ := newTestRouter(t, config.RateLimitConfig{})

	rr := do(h, http.MethodGet, "/item", "", map[string]string{"Accept-Encoding": "br"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "br", rr.Header().Get("Content-Encoding"))

	raw, err := io.ReadAll(brotli.NewReader(rr.Body))
	require.NoError(t, err)

	var env struct {
		Success bool          `json:"success"`
		Data    []models.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.True(t, env.Success)
	assert.Len(t, env.Data, 50)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t, config.RateLimitConfig{})

	rr := do(h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	do(h, http.MethodGet, "/item/1", "", nil)
	rr = do(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `route="/item/{id}"`))
}

func TestRouter_RateLimit(t *testing.T) {
	h, _ := newTestRouter(t, config.RateLimitConfig{RPS: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodGet, "/health", "", nil).Code)
}
