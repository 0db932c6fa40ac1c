package auth

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/clubcal/internal/apperror"
	"github.com/keyxmakerx/clubcal/internal/middleware"
)

// contextKeyViewer stores the resolved Viewer in the Echo context.
const contextKeyViewer = "auth_viewer"

// LoadViewer returns middleware that reads the viewer's credential from the
// Authorization header or the session cookie and resolves their permissions
// for the club named by the ":club" route param. Resolution failures fall
// back to an empty capability record so nothing gated is ever shown.
func LoadViewer(provider PermissionProvider, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			viewer := Viewer{Credential: credentialFrom(c, cookieName)}

			perms, err := provider.Resolve(c.Request().Context(), viewer.Credential, c.Param("club"))
			if err != nil {
				slog.Warn("permission lookup failed, treating viewer as unprivileged",
					slog.String("club", c.Param("club")),
					slog.String("request_id", middleware.GetRequestID(c)),
					slog.Any("error", err),
				)
			} else {
				viewer.Permissions = perms
			}

			c.Set(contextKeyViewer, viewer)
			return next(c)
		}
	}
}

// RequirePermission returns middleware that rejects viewers whose
// permissions fail check. Anonymous viewers get 401 so the error handler
// can send them to sign in; signed-in viewers get 403. action completes the
// sentence "you do not have permission to ...".
func RequirePermission(action string, check func(Permissions) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			viewer := GetViewer(c)
			if check(viewer.Permissions) {
				return next(c)
			}
			if viewer.Anonymous() {
				return apperror.NewUnauthorized("sign in to " + action)
			}
			return apperror.NewForbidden("you do not have permission to " + action)
		}
	}
}

// GetViewer returns the viewer loaded by LoadViewer, or an anonymous viewer
// with no permissions when the middleware did not run.
func GetViewer(c echo.Context) Viewer {
	viewer, _ := c.Get(contextKeyViewer).(Viewer)
	return viewer
}

// credentialFrom prefers an explicit bearer token over the session cookie.
func credentialFrom(c echo.Context, cookieName string) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}
