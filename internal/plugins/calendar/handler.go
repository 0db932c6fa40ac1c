package calendar

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/clubcal/internal/apperror"
	"github.com/keyxmakerx/clubcal/internal/middleware"
	"github.com/keyxmakerx/clubcal/internal/plugins/auth"
	"github.com/keyxmakerx/clubcal/internal/templates/layouts"
)

// Handler processes HTTP requests for the calendar plugin.
type Handler struct {
	svc          CalendarService
	location     *time.Location
	eventPageURL string
	now          func() time.Time
}

// NewHandler creates a new calendar Handler. location decides which date
// is "today"; eventPageURL prefixes event IDs in the event list.
func NewHandler(svc CalendarService, location *time.Location, eventPageURL string) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{svc: svc, location: location, eventPageURL: eventPageURL, now: time.Now}
}

func (h *Handler) today() civil.Date {
	return civil.DateOf(h.now().In(h.location))
}

// orchestrator builds the view state from the route and query string.
func (h *Handler) orchestrator(c echo.Context) (*Orchestrator, error) {
	viewer := auth.GetViewer(c)
	today := h.today()

	month := MonthOf(today)
	if q := c.QueryParam("month"); q != "" {
		m, err := ParseMonth(q)
		if err != nil {
			return nil, apperror.NewBadRequest(err.Error())
		}
		month = m
	}

	o := NewOrchestrator(ScopeFor(c.Param("club")), month, viewer.Permissions, today)
	o.Filters = ParseFilters(c.QueryParams())
	if o.Scope.IsUnified() {
		o.Facets = ParseFacets(c.QueryParams())
	}
	return o, nil
}

// load fetches the orchestrator's month and applies it.
func (h *Handler) load(c echo.Context, o *Orchestrator) error {
	o.BeginFetch()
	snap, err := h.svc.LoadMonth(c.Request().Context(), auth.GetViewer(c), o.Scope, o.Month)
	if err != nil {
		return err
	}
	o.ApplySnapshot(snap)
	return nil
}

// withLayout marks the request's sign-in state for the page shell.
func withLayout(c echo.Context) {
	ctx := layouts.WithSignedIn(c.Request().Context(), !auth.GetViewer(c).Anonymous())
	c.SetRequest(c.Request().WithContext(ctx))
}

// Show renders the calendar page. The grid arrives in a follow-up HTMX
// request so the page paints while upstream data loads.
// GET /calendar, GET /clubs/:club/calendar
func (h *Handler) Show(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}
	if middleware.IsHTMX(c) {
		if err := h.load(c, o); err != nil {
			return err
		}
		return middleware.Render(c, http.StatusOK, CalendarGrid(viewData(o)))
	}

	o.BeginFetch()
	withLayout(c)
	return middleware.Render(c, http.StatusOK, CalendarPage(viewData(o)))
}

// Grid renders the grid fragment for a month.
// GET /calendar/grid, GET /clubs/:club/calendar/grid
func (h *Handler) Grid(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}
	if err := h.load(c, o); err != nil {
		return err
	}
	return middleware.Render(c, http.StatusOK, CalendarGrid(viewData(o)))
}

// DayClick answers a cell click with the modal for that day, or an empty
// fragment when no modal applies.
// GET /calendar/day/:date, GET /clubs/:club/calendar/day/:date
func (h *Handler) DayClick(c echo.Context) error {
	day, err := civil.ParseDate(c.Param("date"))
	if err != nil {
		return apperror.NewBadRequest("invalid date")
	}

	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}
	o.Month = MonthOf(day)
	if err := h.load(c, o); err != nil {
		return err
	}

	modal := o.CellClick(o.Project(day))
	switch modal.Kind {
	case ModalEventList:
		var createURL string
		if o.CanCreateEvents() {
			createURL = NewEventURL(o.Scope, modal.Date)
		}
		return middleware.Render(c, http.StatusOK, EventListModal(modal.Date, modal.Events, h.eventPageURL, createURL))
	case ModalInterest:
		return middleware.Render(c, http.StatusOK, InterestModal(InterestForm{
			Scope: o.Scope,
			Date:  modal.Date,
			Clubs: clubsIn(o.Snapshot),
		}))
	case ModalCreateEvent:
		return middleware.Render(c, http.StatusOK, CreateEventModal(newEventForm(o.Scope, &modal.Date)))
	}
	return middleware.Render(c, http.StatusOK, EmptyModal())
}

// NewEventForm renders the create-event modal, optionally on ?date=.
// GET /clubs/:club/calendar/events/new
func (h *Handler) NewEventForm(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}

	var day *civil.Date
	if q := c.QueryParam("date"); q != "" {
		d, err := civil.ParseDate(q)
		if err != nil {
			return apperror.NewBadRequest("invalid date")
		}
		day = &d
	}
	if !o.CreateEvent(day) {
		return apperror.NewForbidden("you do not have permission to create events")
	}

	return middleware.Render(c, http.StatusOK, CreateEventModal(newEventForm(o.Scope, day)))
}

// newEventForm is a blank create-event form, starting on day when given.
func newEventForm(scope Scope, day *civil.Date) EventForm {
	form := EventForm{Scope: scope, Input: CreateEventInput{EventType: string(EventTypeTraining)}}
	if day != nil {
		form.Input.StartDate = formatDay(*day)
	}
	return form
}

// CreateEvent submits the create-event form. Rejections re-render the form
// with the platform's message; success closes the modal and refreshes the
// grid, showing a confirmation first when the platform flagged a conflict.
// POST /clubs/:club/calendar/events
func (h *Handler) CreateEvent(c echo.Context) error {
	scope := ScopeFor(c.Param("club"))
	var input CreateEventInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid form data")
	}

	event, err := h.svc.CreateEvent(c.Request().Context(), auth.GetViewer(c), scope.ClubID(), input)
	if err != nil {
		if msg, ok := inlineError(err); ok {
			return middleware.Render(c, http.StatusOK, CreateEventModal(EventForm{Scope: scope, Input: input, Error: msg}))
		}
		return err
	}

	middleware.TriggerEvent(c, RefreshEvent)
	if event.ConflictWarning != "" {
		return middleware.Render(c, http.StatusOK, EventCreatedModal(event))
	}
	return middleware.Render(c, http.StatusOK, EmptyModal())
}

// SubmitInterest submits the interest form.
// POST /calendar/interest, POST /clubs/:club/calendar/interest
func (h *Handler) SubmitInterest(c echo.Context) error {
	scope := ScopeFor(c.Param("club"))
	var input InterestInput
	if err := c.Bind(&input); err != nil {
		return apperror.NewBadRequest("invalid form data")
	}

	err := h.svc.SubmitInterest(c.Request().Context(), auth.GetViewer(c), scope, input)
	if err != nil {
		msg, ok := inlineError(err)
		if !ok {
			return err
		}
		form := InterestForm{Scope: scope, Input: input, Error: msg}
		if day, perr := parseDay(input.Date); perr == nil {
			form.Date = day
		} else {
			form.Date = h.today()
		}
		return middleware.Render(c, http.StatusOK, InterestModal(form))
	}

	middleware.TriggerEvent(c, RefreshEvent)
	return middleware.Render(c, http.StatusOK, EmptyModal())
}

// inlineError reports whether err belongs inside the open modal: platform
// rejections and upstream failures. Authorization errors go to the error
// handler instead.
func inlineError(err error) (string, bool) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return "", false
	}
	switch appErr.Code {
	case http.StatusUnprocessableEntity, http.StatusBadRequest, http.StatusBadGateway:
		return appErr.Message, true
	}
	return "", false
}

// --- JSON API ---

// monthResponse is the JSON month projection.
type monthResponse struct {
	Scope    Scope          `json:"scope"`
	Month    Month          `json:"month"`
	Degraded []string       `json:"degraded"`
	Days     []dayResponse  `json:"days"`
	Filters  filterResponse `json:"filters"`
}

type filterResponse struct {
	ShowPublic   bool `json:"showPublic"`
	ShowPrivate  bool `json:"showPrivate"`
	ShowInterest bool `json:"showInterest"`
}

type dayResponse struct {
	Date            civil.Date       `json:"date"`
	IsToday         bool             `json:"isToday"`
	IsPast          bool             `json:"isPast"`
	Interactive     bool             `json:"interactive"`
	Badge           string           `json:"badge"`
	Events          []Event          `json:"events"`
	Holidays        []Holiday        `json:"holidays"`
	Blocked         bool             `json:"blocked"`
	PriorityWeekend *PriorityWeekend `json:"priorityWeekend,omitempty"`
	Interest        *interestView    `json:"interest,omitempty"`
	Tooltip         []string         `json:"tooltip"`
}

type interestView struct {
	TotalSubmissions int `json:"totalSubmissions"`
	UniqueUsers      int `json:"uniqueUsers"`
	Heat             int `json:"heat"`
}

// MonthAPI returns the projected month as JSON, gated exactly as the grid.
// GET /api/v1/calendar/month, GET /api/v1/clubs/:club/calendar/month
func (h *Handler) MonthAPI(c echo.Context) error {
	o, err := h.orchestrator(c)
	if err != nil {
		return err
	}
	if err := h.load(c, o); err != nil {
		return err
	}

	resp := monthResponse{
		Scope:    o.Scope,
		Month:    o.Month,
		Degraded: o.Snapshot.Degraded,
		Days:     make([]dayResponse, 0, o.Month.Days()),
		Filters:  filterResponse(o.Filters),
	}
	if resp.Degraded == nil {
		resp.Degraded = []string{}
	}
	for _, gc := range o.Cells() {
		if gc.Blank {
			continue
		}
		cell := gc.Cell
		day := dayResponse{
			Date:            cell.Date,
			IsToday:         cell.IsToday,
			IsPast:          cell.IsPast,
			Interactive:     cell.Interactive,
			Badge:           cell.Badge.String(),
			Events:          nonNil(cell.Events),
			Holidays:        nonNil(cell.Holidays),
			Blocked:         cell.Blocked,
			PriorityWeekend: cell.Priority,
			Tooltip:         nonNil(cell.Tooltip),
		}
		if cell.ShowInterest {
			day.Interest = &interestView{
				TotalSubmissions: cell.InterestTotal,
				UniqueUsers:      cell.InterestUnique,
				Heat:             cell.Heat,
			}
		}
		resp.Days = append(resp.Days, day)
	}
	return c.JSON(http.StatusOK, resp)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// clubsIn lists the distinct clubs that appear in a snapshot's events.
func clubsIn(snap *Snapshot) []Club {
	if snap == nil {
		return nil
	}
	var clubs []Club
	for _, e := range snap.Events {
		if e.Club == nil || e.Club.ID == "" || e.Club.Name == "" {
			continue
		}
		if slices.ContainsFunc(clubs, func(c Club) bool { return c.ID == e.Club.ID }) {
			continue
		}
		clubs = append(clubs, *e.Club)
	}
	slices.SortFunc(clubs, func(a, b Club) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return clubs
}
