package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/clubcal/internal/middleware"
	"github.com/keyxmakerx/clubcal/internal/plugins/auth"
	"github.com/keyxmakerx/clubcal/internal/plugins/calendar"
	"github.com/keyxmakerx/clubcal/internal/upstream"
)

// RegisterRoutes wires the plugins and sets up all application routes.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes() error {
	e := a.Echo
	cfg := a.Config

	client, err := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	if err != nil {
		return err
	}

	var cache *calendar.MonthCache
	if cfg.Cache.Enabled {
		cache = calendar.NewMonthCache(cfg.Cache.Size, cfg.Cache.TTL, a.Redis, a.Metrics)
	}

	repo := calendar.NewCalendarRepository(client)
	fetcher := calendar.NewFetcher(repo, a.Metrics, cfg.Calendar.HolidayCountry)
	svc := calendar.NewCalendarService(repo, fetcher, cache)
	handler := calendar.NewHandler(svc, cfg.Calendar.Location, cfg.Calendar.EventPageURL)

	// --- Public Routes ---

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/calendar")
	})

	// Health check for the container orchestrator. Redis is optional, so
	// only a configured-but-unreachable Redis fails it.
	e.GET("/healthz", func(c echo.Context) error {
		if a.Redis != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := a.Redis.Ping(ctx).Err(); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "redis": "unreachable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))

	// --- Plugin Routes ---

	calendar.RegisterRoutes(e, handler, calendar.RouteDeps{
		Permissions:   auth.NewPermissionService(client),
		SessionCookie: cfg.Auth.SessionCookie,
		InterestLimit: middleware.RateLimit(a.ctx, cfg.RateLimit.InterestMax, cfg.RateLimit.InterestWindow),
	})

	return nil
}
