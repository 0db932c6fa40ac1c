// data.go provides typed context helpers for passing layout data from
// handlers/middleware to the page shell. Only simple types are stored so
// the layouts package never imports plugin types.
//
// Data flow: Middleware/Handler → request context → Base
package layouts

import (
	"context"

	"github.com/labstack/echo/v4"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey string

const (
	keyLoginURL ctxKey = "layout_login_url"
	keySignedIn ctxKey = "layout_signed_in"
)

// Injector returns middleware that stores site-wide layout data in the
// request context.
func Injector(loginURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := context.WithValue(c.Request().Context(), keyLoginURL, loginURL)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// WithSignedIn records whether the viewer presented a credential.
func WithSignedIn(ctx context.Context, signedIn bool) context.Context {
	return context.WithValue(ctx, keySignedIn, signedIn)
}

// IsSignedIn reports whether the viewer presented a credential.
func IsSignedIn(ctx context.Context) bool {
	v, _ := ctx.Value(keySignedIn).(bool)
	return v
}

// LoginURL returns the identity provider's sign-in page, or "".
func LoginURL(ctx context.Context) string {
	v, _ := ctx.Value(keyLoginURL).(string)
	return v
}
