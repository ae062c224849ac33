// Package ratelimit ограничивает частоту запросов отдельно для каждого клиента.
package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/linemk/storefront/internal/domain/models"
)

const msgTooManyRequests = "Too many requests, slow down."

// KeyFunc выбирает ключ клиента для запроса. Пустой ключ означает «по адресу».
type KeyFunc func(r *http.Request) string

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter держит по одному token bucket на клиента.
type Limiter struct {
	log     *slog.Logger
	mu      sync.Mutex
	clients map[string]*client
	rate    rate.Limit
	burst   int
	keyFunc KeyFunc
}

// New создаёт ограничитель. rps <= 0 отключает ограничение.
func New(log *slog.Logger, rps float64, burst int, keyFunc KeyFunc) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		log:     log.With(slog.String("component", "middleware/ratelimit")),
		clients: make(map[string]*client),
		rate:    rate.Limit(rps),
		burst:   burst,
		keyFunc: keyFunc,
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

// Handler — middleware: превышение лимита даёт 429.
func (l *Limiter) Handler(next http.Handler) http.Handler {
	if l.rate <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if l.keyFunc != nil {
			key = l.keyFunc(r)
		}
		if key == "" {
			key = clientIP(r)
		}

		if !l.get(key).Allow() {
			l.log.Warn("rate limit exceeded",
				slog.String("key", key),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(models.Fail[struct{}](msgTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Cleanup удаляет клиентов, которых не было дольше idle.
func (l *Limiter) Cleanup(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	for key, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// Len — количество отслеживаемых клиентов.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
