// Package app is the application bootstrap and dependency injection root.
// It holds the shared infrastructure (Redis client, metrics, Echo instance)
// and wires the upstream client, auth and calendar plugins together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/clubcal/internal/apperror"
	"github.com/keyxmakerx/clubcal/internal/config"
	"github.com/keyxmakerx/clubcal/internal/metrics"
	"github.com/keyxmakerx/clubcal/internal/middleware"
	"github.com/keyxmakerx/clubcal/internal/templates/layouts"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Redis backs the shared month cache tier. Nil when not configured.
	Redis *redis.Client

	// Metrics is the Prometheus registry exposed at /metrics.
	Metrics *metrics.Metrics

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	// ctx bounds background work such as the rate limiter's sweeper.
	ctx context.Context
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling. ctx ends
// background goroutines started for the app.
func New(ctx context.Context, cfg *config.Config, rdb *redis.Client, m *metrics.Metrics) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Trust the reverse proxy in front of us so c.RealIP() returns the
	// client address the interest rate limiter keys on.
	middleware.TrustedProxies(e, []string{
		"127.0.0.0/8",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"fd00::/8",
	})

	app := &App{
		Config:  cfg,
		Redis:   rdb,
		Metrics: m,
		Echo:    e,
		ctx:     ctx,
	}

	app.setupMiddleware()
	e.HTTPErrorHandler = app.errorHandler

	// Serve static files (CSS, JS, vendor libs).
	e.Static("/static", "static")

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first, innermost (CSRF) runs last.
func (a *App) setupMiddleware() {
	// Panic recovery -- must be outermost to catch panics from all other middleware.
	a.Echo.Use(middleware.Recovery())

	// Request ID before logging so every log line carries it.
	a.Echo.Use(middleware.RequestID())

	a.Echo.Use(middleware.RequestLogger(a.Metrics))
	a.Echo.Use(middleware.SecurityHeaders())
	a.Echo.Use(layouts.Injector(a.Config.Auth.LoginURL))

	// CSRF -- double-submit cookie pattern on all state-changing requests.
	a.Echo.Use(middleware.CSRF())
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to appropriate HTTP responses, and renders error pages for
// browser requests or JSON for API requests.
//
// For HTMX partial requests that hit errors, we set HX-Retarget and
// HX-Reswap headers so the error replaces the modal slot instead of
// landing inside a grid cell.
//
// For 401 errors on browser requests, we redirect to the login page.
func (a *App) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := defaultErrorMessage(code)

	var appErr *apperror.AppError
	var echoErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
				slog.String("request_id", middleware.GetRequestID(c)),
			)
		}
	case errors.As(err, &echoErr):
		code = echoErr.Code
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = defaultErrorMessage(code)
		}
	default:
		slog.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
			slog.String("request_id", middleware.GetRequestID(c)),
		)
	}

	// API requests always get JSON.
	if isAPIRequest(c) {
		_ = c.JSON(code, map[string]string{
			"error":   http.StatusText(code),
			"message": message,
		})
		return
	}

	loginURL := a.Config.Auth.LoginURL
	if middleware.IsHTMX(c) {
		if code == http.StatusUnauthorized {
			c.Response().Header().Set("HX-Redirect", loginURL)
			_ = c.NoContent(http.StatusNoContent)
			return
		}
		c.Response().Header().Set("HX-Retarget", "#calendar-modal")
		c.Response().Header().Set("HX-Reswap", "innerHTML")
		_ = middleware.Render(c, code, layouts.ErrorFragment(code, message))
		return
	}

	if code == http.StatusUnauthorized {
		_ = c.Redirect(http.StatusSeeOther, loginURL)
		return
	}

	_ = middleware.Render(c, code, layouts.ErrorPage(code, message))
}

// defaultErrorMessage returns a user-friendly message for common HTTP status codes
// when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusUnauthorized:
		return "You need to sign in to see this calendar."
	case http.StatusForbidden:
		return "You don't have permission to access this calendar."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist or has been moved."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusUnprocessableEntity:
		return "The submitted data could not be processed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusBadGateway:
		return "The club calendar service is not responding. Please try again."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "An unexpected error occurred."
	}
}

// isAPIRequest returns true if the request is targeting the API (JSON response expected).
func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting clubcal server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}
