package calendar

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/clubcal/internal/plugins/auth"
)

// RouteDeps carries what the calendar routes need from the app.
type RouteDeps struct {
	Permissions   auth.PermissionProvider
	SessionCookie string

	// InterestLimit throttles interest submissions. May be nil.
	InterestLimit echo.MiddlewareFunc
}

func canViewUnified(p auth.Permissions) bool    { return CanView(UnifiedScope, p) }
func canViewClub(p auth.Permissions) bool       { return p.CanViewCalendar }
func canCreateEvents(p auth.Permissions) bool   { return p.CanCreateEvents }
func canSubmitInterest(p auth.Permissions) bool { return p.CanSubmitInterest }

// RegisterRoutes sets up the unified and per-club calendar routes and the
// JSON month API. Every route resolves the viewer first; mutation routes
// also check the capability they need, since a form can be posted directly
// even when the control that opens it is hidden.
func RegisterRoutes(e *echo.Echo, h *Handler, deps RouteDeps) {
	loadViewer := auth.LoadViewer(deps.Permissions, deps.SessionCookie)
	interest := []echo.MiddlewareFunc{auth.RequirePermission("submit interest", canSubmitInterest)}
	if deps.InterestLimit != nil {
		interest = append([]echo.MiddlewareFunc{deps.InterestLimit}, interest...)
	}

	// Unified cross-club calendar.
	ug := e.Group("/calendar", loadViewer, auth.RequirePermission("view the calendar", canViewUnified))
	ug.GET("", h.Show)
	ug.GET("/grid", h.Grid)
	ug.GET("/day/:date", h.DayClick)
	ug.POST("/interest", h.SubmitInterest, interest...)

	// A single club's calendar.
	cg := e.Group("/clubs/:club/calendar", loadViewer, auth.RequirePermission("view this calendar", canViewClub))
	cg.GET("", h.Show)
	cg.GET("/grid", h.Grid)
	cg.GET("/day/:date", h.DayClick)
	cg.GET("/events/new", h.NewEventForm, auth.RequirePermission("create events", canCreateEvents))
	cg.POST("/events", h.CreateEvent, auth.RequirePermission("create events", canCreateEvents))
	cg.POST("/interest", h.SubmitInterest, interest...)

	// JSON month projection.
	api := e.Group("/api/v1", loadViewer)
	api.GET("/calendar/month", h.MonthAPI, auth.RequirePermission("view the calendar", canViewUnified))
	api.GET("/clubs/:club/calendar/month", h.MonthAPI, auth.RequirePermission("view this calendar", canViewClub))
}
