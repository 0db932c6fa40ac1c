package middleware

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// IsHTMX returns true if the current request was initiated by HTMX and is NOT
// a boosted navigation. Handlers use this to decide whether to return a
// fragment (grid, modal) or the full calendar page.
func IsHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true" &&
		c.Request().Header.Get("HX-Boosted") != "true"
}

// Render writes a templ component to the response with the given status code.
// Components read the CSRF token and request ID from the request context,
// which the CSRF and RequestID middleware populate.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(statusCode)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// TriggerEvent sets the HX-Trigger response header so the page can react
// to a completed mutation (the grid listens for "calendar:refresh").
func TriggerEvent(c echo.Context, event string) {
	c.Response().Header().Set("HX-Trigger", event)
}
