package ratelimit_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linemk/storefront/internal/lib/ratelimit"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doRequest(h http.Handler, remote string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestLimiter_PerClient(t *testing.T) {
	l := ratelimit.New(discard(), 0.001, 2, nil)
	h := l.Handler(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:1002"))

	// у другого клиента свой лимит
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2:1000"))
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_KeyFunc(t *testing.T) {
	l := ratelimit.New(discard(), 0.001, 1, func(r *http.Request) string {
		return r.Header.Get("X-Key")
	})
	h := l.Handler(okHandler())

	req := func(key string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Key", key)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, req("a"))
	assert.Equal(t, http.StatusTooManyRequests, req("a"))
	assert.Equal(t, http.StatusOK, req("b"))
}

func TestLimiter_Disabled(t *testing.T) {
	l := ratelimit.New(discard(), 0, 0, nil)
	h := l.Handler(okHandler())

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1000"))
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l := ratelimit.New(discard(), 1, 1, nil)
	h := l.Handler(okHandler())
	doRequest(h, "10.0.0.1:1000")
	assert.Equal(t, 1, l.Len())

	l.Cleanup(time.Hour)
	assert.Equal(t, 1, l.Len())

	l.Cleanup(-time.Second)
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_TooManyRequestsEnvelope(t *testing.T) {
	l := ratelimit.New(discard(), 0.001, 1, nil)
	h := l.Handler(okHandler())
	doRequest(h, "10.0.0.1:1000")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1000"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"message":"Too many requests, slow down."}`, rr.Body.String())
}
