package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	csrfTokenLength = 32
	csrfCookieName  = "clubcal_csrf"
	csrfHeaderName  = "X-CSRF-Token"
	csrfFormField   = "csrf_token"
	csrfContextKey  = "csrf_token"
)

type csrfCtxKey struct{}

// CSRF returns middleware implementing the double-submit cookie pattern for
// the calendar's modal forms (event creation, interest submission).
//
// The token is also rendered into the page's csrf-token meta tag, which
// static/js/clubcal.js copies into the X-CSRF-Token header of every HTMX
// request; plain form posts use the hidden csrf_token field that every modal
// renders. JSON API routes are read-only and skipped.
func CSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if strings.HasPrefix(req.URL.Path, "/api/") {
				return next(c)
			}

			token := ""
			if cookie, err := req.Cookie(csrfCookieName); err == nil {
				token = cookie.Value
			}
			fresh := token == ""
			if fresh {
				var err error
				if token, err = generateCSRFToken(); err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate CSRF token")
				}
				c.SetCookie(&http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true, // scripts read the token from the meta tag, never the cookie
					Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(csrfContextKey, token)
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), csrfCtxKey{}, token)))

			if isSafeMethod(req.Method) {
				return next(c)
			}

			// A request that arrived without the cookie cannot have a
			// matching submitted token.
			if fresh {
				return echo.NewHTTPError(http.StatusForbidden, "invalid or missing CSRF token")
			}

			submitted := req.Header.Get(csrfHeaderName)
			if submitted == "" {
				submitted = c.FormValue(csrfFormField)
			}
			if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid or missing CSRF token")
			}

			return next(c)
		}
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetCSRFToken retrieves the CSRF token from the Echo context.
func GetCSRFToken(c echo.Context) string {
	if token, ok := c.Get(csrfContextKey).(string); ok {
		return token
	}
	return ""
}

// CSRFTokenFromContext retrieves the CSRF token from a request context.
// Templates use this to render the hidden form field.
func CSRFTokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(csrfCtxKey{}).(string); ok {
		return token
	}
	return ""
}
