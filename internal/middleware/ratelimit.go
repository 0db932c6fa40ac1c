package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// rateLimitEntry tracks request counts for a single key within a time window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// RateLimit returns middleware that limits requests per client IP and route
// to maxRequests within window, answering 429 once exceeded. It guards the
// interest endpoint: submissions are deliberately not deduplicated, so the
// limiter is the only brake on a script inflating totalSubmissions.
//
// Expired entries are swept every window until ctx is cancelled.
func RateLimit(ctx context.Context, maxRequests int, window time.Duration) echo.MiddlewareFunc {
	var mu sync.Mutex
	entries := make(map[string]*rateLimitEntry)

	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				mu.Lock()
				for key, entry := range entries {
					if now.Sub(entry.windowStart) > window {
						delete(entries, key)
					}
				}
				mu.Unlock()
			}
		}
	}()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP() + " " + c.Path()
			now := time.Now()

			mu.Lock()
			entry, ok := entries[key]
			if !ok || now.Sub(entry.windowStart) > window {
				entries[key] = &rateLimitEntry{count: 1, windowStart: now}
				mu.Unlock()
				return next(c)
			}
			entry.count++
			exceeded := entry.count > maxRequests
			mu.Unlock()

			if exceeded {
				return echo.NewHTTPError(http.StatusTooManyRequests,
					"Too many submissions. Please wait a moment and try again.")
			}
			return next(c)
		}
	}
}
