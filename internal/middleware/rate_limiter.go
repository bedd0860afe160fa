package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RateLimiter is a fixed-window counter per client IP.
type RateLimiter struct {
	limit   int
	window  time.Duration
	mensaje string
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*rateEntry
}

type rateEntry struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter(limit int, window time.Duration, mensaje string) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		mensaje: mensaje,
		now:     time.Now,
		entries: make(map[string]*rateEntry),
	}
}

// NewLoginRateLimiter limits login attempts to 20 per minute per IP.
func NewLoginRateLimiter() *RateLimiter {
	return NewRateLimiter(20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")
}

// allow counts one request from ip and reports whether it fits the window.
func (l *RateLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[ip]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

// purge drops expired windows and returns how many were removed.
func (l *RateLimiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			n++
		}
	}
	return n
}

// RunPurge removes expired entries every interval until ctx is cancelled,
// so IPs that never return do not accumulate.
func (l *RateLimiter) RunPurge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.purge(); n > 0 {
				log.Debug().Int("purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}
