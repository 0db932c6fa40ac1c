package calendar

import (
	"context"
	"io"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/a-h/templ"

	"github.com/keyxmakerx/clubcal/internal/middleware"
	"github.com/keyxmakerx/clubcal/internal/templates/layouts"
	"github.com/keyxmakerx/clubcal/internal/templates/markup"
)

// Sports are the facet choices of the unified view.
var Sports = []string{"Gaelic Football", "Hurling", "Camogie", "Ladies Football", "Handball", "Rounders"}

// ModalTarget is the element modal fragments swap into.
const ModalTarget = "#calendar-modal"

// RefreshEvent is the HX-Trigger event that reloads the grid.
const RefreshEvent = "calendar:refresh"

// ViewData is what the page and grid templates render from.
type ViewData struct {
	Scope   Scope
	Month   Month
	Filters Filters
	Facets  Facets
	Perms   Permissions

	// Loading renders a spinner that fetches the grid on load.
	Loading  bool
	Cells    []GridCell
	Degraded []string
}

// viewData snapshots an orchestrator for rendering.
func viewData(o *Orchestrator) ViewData {
	data := ViewData{
		Scope:   o.Scope,
		Month:   o.Month,
		Filters: o.Filters,
		Facets:  o.Facets,
		Perms:   o.Perms,
		Loading: o.Loading,
		Cells:   o.Cells(),
	}
	if o.Snapshot != nil {
		data.Degraded = o.Snapshot.Degraded
	}
	return data
}

// query encodes month, filters and facets.
func (d ViewData) query(month Month, filters Filters) string {
	q := url.Values{}
	q.Set("month", month.String())
	filters.Encode(q)
	if d.Scope.IsUnified() {
		d.Facets.Encode(q)
	}
	return q.Encode()
}

func (d ViewData) pageURL(month Month, filters Filters) string {
	return d.Scope.BasePath() + "?" + d.query(month, filters)
}

func (d ViewData) gridURL(month Month, filters Filters) string {
	return d.Scope.BasePath() + "/grid?" + d.query(month, filters)
}

func (d ViewData) dayURL(day civil.Date) string {
	q := url.Values{}
	d.Filters.Encode(q)
	if d.Scope.IsUnified() {
		d.Facets.Encode(q)
	}
	u := d.Scope.BasePath() + "/day/" + formatDay(day)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// --- Page ---

// CalendarPage is the full calendar page. The grid loads itself over HTMX
// so the shell paints before the upstream fetch finishes.
func CalendarPage(data ViewData) templ.Component {
	title := "Unified calendar"
	if !data.Scope.IsUnified() {
		title = "Club calendar"
	}
	return layouts.Base(title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := markup.New(w)
		b.Raw(`<div class="calendar-page"><div class="calendar-toolbar"><h1>`).Text(title).Raw("</h1>")
		if !data.Scope.IsUnified() && data.Perms.CanCreateEvents {
			b.Raw(`<button type="button" class="btn btn-primary"`).
				Attr("hx-get", NewEventURL(data.Scope, civil.Date{})).
				Attr("hx-target", ModalTarget).
				Raw(">Create event</button>")
		}
		b.Raw("</div>")
		b.Child(ctx, CalendarGrid(data))
		b.Raw(`<div id="calendar-modal" aria-live="polite"></div></div>`)
		return b.Err()
	}))
}

// --- Grid ---

// CalendarGrid is the swappable grid region: navigation, filter bar and the
// month of cells, or a spinner while loading.
func CalendarGrid(data ViewData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := markup.New(w)
		self := data.gridURL(data.Month, data.Filters)
		trigger := RefreshEvent + " from:body"
		if data.Loading {
			trigger = "load, " + trigger
		}

		b.Raw(`<section id="calendar" class="calendar"`).
			Attr("data-month", data.Month.String()).
			Attr("hx-get", self).
			Attr("hx-trigger", trigger).
			Attr("hx-swap", "outerHTML").
			Attr("hx-sync", "this:replace").
			Attr("hx-indicator", "#calendar-spinner").
			Raw(">")

		writeNav(b, data)
		writeFilterBar(b, data)
		if data.Scope.IsUnified() {
			writeFacets(b, data)
		}

		if len(data.Degraded) > 0 {
			b.Raw(`<p class="calendar-degraded" role="status">Some calendar data could not be loaded. `,
				`<a href="#"`).Attr("hx-get", self).Attr("hx-target", "#calendar").Attr("hx-swap", "outerHTML").
				Raw(">Retry</a></p>")
		}

		b.Raw(`<div id="calendar-spinner" class="spinner htmx-indicator" aria-label="Loading"></div>`)
		if data.Loading {
			b.Raw(`<div class="calendar-loading"><div class="spinner" aria-label="Loading calendar"></div></div>`)
		} else {
			writeCells(ctx, b, data)
		}
		b.Raw("</section>")
		return b.Err()
	})
}

func writeNav(b *markup.Writer, data ViewData) {
	nav := func(label, aria string, month Month) {
		b.Raw(`<a class="calendar-nav-btn"`).
			Attr("aria-label", aria).
			URLAttr("href", data.pageURL(month, data.Filters)).
			Attr("hx-get", data.gridURL(month, data.Filters)).
			Attr("hx-target", "#calendar").
			Attr("hx-swap", "outerHTML").
			URLAttr("hx-push-url", data.pageURL(month, data.Filters)).
			Raw(">").Text(label).Raw("</a>")
	}
	b.Raw(`<nav class="calendar-nav">`)
	nav("‹", "Previous month", data.Month.Prev())
	b.Raw(`<h2 class="calendar-title">`).Text(data.Month.Title()).Raw("</h2>")
	nav("›", "Next month", data.Month.Next())
	b.Raw("</nav>")
}

// writeFilterBar renders the visibility toggles. The interest toggle is
// only offered to viewers who can see interest at all.
func writeFilterBar(b *markup.Writer, data ViewData) {
	toggle := func(name, label string, on bool) {
		next := data.Filters.Toggle(name)
		b.Raw(`<a`).
			Class("filter-toggle", markup.If(on, "is-on")).
			Attr("role", "switch").
			Attr("aria-checked", strconv.FormatBool(on)).
			URLAttr("href", data.pageURL(data.Month, next)).
			Attr("hx-get", data.gridURL(data.Month, next)).
			Attr("hx-target", "#calendar").
			Attr("hx-swap", "outerHTML").
			URLAttr("hx-push-url", data.pageURL(data.Month, next)).
			Raw(">").Text(label).Raw("</a>")
	}
	b.Raw(`<div class="filter-bar">`)
	toggle(FilterPublic, "Fixtures", data.Filters.ShowPublic)
	toggle(FilterPrivate, "Club events", data.Filters.ShowPrivate)
	if data.Perms.CanViewInterestIdentities {
		toggle(FilterInterest, "Interest", data.Filters.ShowInterest)
	}
	b.Raw("</div>")
}

func writeFacets(b *markup.Writer, data ViewData) {
	b.Raw(`<form class="facet-form"`).
		Attr("hx-get", data.Scope.BasePath()+"/grid").
		Attr("hx-target", "#calendar").
		Attr("hx-swap", "outerHTML").
		Raw(">")
	b.Raw(`<input type="hidden" name="month"`).Attr("value", data.Month.String()).Raw(">")
	q := url.Values{}
	data.Filters.Encode(q)
	for name := range q {
		b.Raw(`<input type="hidden"`).Attr("name", name).Attr("value", q.Get(name)).Raw(">")
	}
	b.Raw(`<label>Country <input type="search" name="country"`).Attr("value", data.Facets.Country).Raw("></label>")
	b.Raw(`<fieldset><legend>Sports</legend>`)
	for _, sport := range Sports {
		b.Raw(`<label><input type="checkbox" name="sport"`).Attr("value", sport).
			Flag("checked", slices.Contains(data.Facets.Sports, sport)).Raw("> ").Text(sport).Raw("</label>")
	}
	b.Raw(`</fieldset><button type="submit" class="btn">Apply</button></form>`)
}

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func writeCells(ctx context.Context, b *markup.Writer, data ViewData) {
	b.Raw(`<div class="calendar-grid" role="grid">`)
	for _, name := range weekdayNames {
		b.Raw(`<div class="calendar-weekday" role="columnheader">`).Text(name).Raw("</div>")
	}
	for _, gc := range data.Cells {
		if gc.Blank {
			b.Raw(`<div class="calendar-cell is-blank" aria-hidden="true"></div>`)
			continue
		}
		b.Child(ctx, DayCell(gc.Cell, data.dayURL(gc.Cell.Date)))
	}
	b.Raw("</div>")
}

// --- Cell ---

// maxCellEvents is how many event titles a cell lists before "+N more".
const maxCellEvents = 3

// DayCell renders one day. clickURL is fetched into the modal slot when the
// cell is interactive.
func DayCell(cell CellView, clickURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := markup.New(w)
		heatClass := ""
		if cell.ShowInterest && cell.Heat > 0 {
			heatClass = "heat-" + strconv.Itoa(cell.Heat)
		}

		b.Raw(`<button type="button" role="gridcell"`).
			Class("calendar-cell",
				markup.If(cell.IsToday, "is-today"),
				markup.If(cell.IsPast, "is-past"),
				markup.If(cell.Blocked, "is-blocked"),
				markup.If(cell.Priority != nil, "is-priority"),
				heatClass).
			Attr("data-date", formatDay(cell.Date))
		if len(cell.Tooltip) > 0 {
			b.Attr("title", strings.Join(cell.Tooltip, "\n"))
		}
		if cell.Interactive {
			b.Attr("hx-get", clickURL).Attr("hx-target", ModalTarget)
		} else {
			b.Flag("disabled", true)
		}
		b.Raw(">")

		b.Raw(`<span class="cell-day">`).Text(strconv.Itoa(cell.Date.Day)).Raw("</span>")
		if cell.Badge != BadgeNone {
			b.Raw(`<span`).Class("cell-badge", "badge-"+cell.Badge.String()).
				Attr("aria-label", cell.Badge.Label()).Raw("></span>")
		}
		if cell.Blocked {
			b.Raw(`<span class="cell-icon icon-lock" aria-label="Blocked weekend">&#128274;</span>`)
		}
		if cell.Priority != nil {
			b.Raw(`<span class="cell-icon icon-flag" aria-label="Priority weekend">&#128681;</span>`)
		}
		for _, h := range cell.Holidays {
			b.Raw(`<span class="cell-holiday">`).Text(h.Name).Raw("</span>")
		}
		for i, e := range cell.Events {
			if i == maxCellEvents {
				b.Raw(`<span class="cell-more">+`).Text(strconv.Itoa(len(cell.Events)-maxCellEvents)).Raw(" more</span>")
				break
			}
			b.Raw(`<span`).Class("cell-event", markup.If(e.IsFixture(), "is-fixture")).Raw(">").Text(e.Title).Raw("</span>")
		}
		if cell.ShowInterest && cell.InterestTotal > 0 {
			b.Raw(`<span class="cell-interest"`).
				Attr("aria-label", strconv.Itoa(cell.InterestTotal)+" submissions, "+strconv.Itoa(cell.InterestUnique)+" users").
				Raw(">").Text(strconv.Itoa(cell.InterestTotal)).Raw(" · ").Text(strconv.Itoa(cell.InterestUnique)).Raw("</span>")
		}
		b.Raw("</button>")
		return b.Err()
	})
}

// --- Modals ---

func modalOpen(b *markup.Writer, title string) {
	b.Raw(`<div class="modal-backdrop"><div class="modal" role="dialog" aria-modal="true"><header class="modal-header"><h2>`).
		Text(title).
		Raw(`</h2><button type="button" class="modal-close" data-close-modal aria-label="Close">&times;</button></header>`)
}

func modalClose(b *markup.Writer) {
	b.Raw("</div></div>")
}

func csrfField(ctx context.Context, b *markup.Writer) {
	b.Raw(`<input type="hidden" name="csrf_token"`).Attr("value", middleware.CSRFTokenFromContext(ctx)).Raw(">")
}

func errorBanner(b *markup.Writer, message string) {
	if message != "" {
		b.Raw(`<div class="alert alert-error" role="alert">`).Text(message).Raw("</div>")
	}
}

func longDate(d civil.Date) string {
	return d.In(time.UTC).Format("Monday 2 January 2006")
}

// EventListModal lists a day's events, each linking to its event page.
// NewEventURL is the create-event modal URL, preset to day unless day is zero.
func NewEventURL(scope Scope, day civil.Date) string {
	u := scope.BasePath() + "/events/new"
	if !day.IsZero() {
		u += "?date=" + formatDay(day)
	}
	return u
}

// EventListModal lists the day's events. A non-empty createURL adds a link
// that opens the create-event modal on the same day.
func EventListModal(day civil.Date, events []Event, eventPageURL, createURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := markup.New(w)
		modalOpen(b, longDate(day))
		b.Raw(`<ul class="event-list">`)
		for _, e := range events {
			b.Raw(`<li class="event-item">`)
			if badge := BadgeFor(e); badge != BadgeNone {
				b.Raw(`<span`).Class("cell-badge", "badge-"+badge.String()).Attr("title", badge.Label()).Raw("></span>")
			}
			b.Raw(`<a class="event-title"`).URLAttr("href", eventPageURL+url.PathEscape(e.ID)).Raw(">").
				Text(e.Title).Raw("</a>")
			b.Raw(`<span class="event-meta">`).Text(e.Type.Label())
			if e.StartTime != "" {
				b.Raw(" · ").Text(e.StartTime)
				if e.EndTime != "" {
					b.Raw("–").Text(e.EndTime)
				}
			}
			if e.Club != nil && e.Club.Name != "" {
				b.Raw(" · ").Text(e.Club.Name)
			}
			if e.Location != "" {
				b.Raw(" · ").Text(e.Location)
			}
			b.Raw("</span></li>")
		}
		b.Raw("</ul>")
		if createURL != "" {
			b.Raw(`<button type="button" class="btn btn-secondary"`).
				Attr("hx-get", createURL).
				Attr("hx-target", ModalTarget).
				Raw(">Add event on this day</button>")
		}
		modalClose(b)
		return b.Err()
	})
}

// InterestForm is the interest modal's state.
type InterestForm struct {
	Scope Scope
	Date  civil.Date
	// Clubs are offered as choices in the unified view.
	Clubs []Club
	Input InterestInput
	Error string
}

// InterestModal asks which club might travel on Date and where.
func InterestModal(form InterestForm) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := markup.New(w)
		modalOpen(b, "Register interest for "+longDate(form.Date))
		errorBanner(b, form.Error)

		b.Raw(`<form class="modal-form"`).
			Attr("hx-post", form.Scope.BasePath()+"/interest").
			Attr("hx-target", ModalTarget).
			Raw(">")
		csrfField(ctx, b)
		b.Raw(`<input type="hidden" name="date"`).Attr("value", formatDay(form.Date)).Raw(">")

		selected := form.Input.ClubID
		b.Raw(`<label>Club <select name="clubId">`)
		if !form.Scope.IsUnified() {
			b.Raw(`<option`).Attr("value", form.Scope.ClubID()).Flag("selected", selected == "" || selected == form.Scope.ClubID()).
				Raw(">This club</option>")
		}
		for _, club := range form.Clubs {
			b.Raw(`<option`).Attr("value", club.ID).Flag("selected", selected == club.ID).Raw(">").Text(club.Name).Raw("</option>")
		}
		b.Raw(`<option`).Attr("value", NoClubPreference).
			Flag("selected", selected == NoClubPreference || (selected == "" && form.Scope.IsUnified())).
			Raw(">No preference</option></select></label>")

		b.Raw(`<label>Preferred location <input type="text" name="preferredLocation" maxlength="200"`).
			Attr("value", form.Input.PreferredLocation).Raw("></label>")
		b.Raw(`<div class="modal-actions"><button type="button" class="btn" data-close-modal>Cancel</button>`,
			`<button type="submit" class="btn btn-primary">Submit interest</button></div></form>`)
		modalClose(b)
		return b.Err()
	})
}

// EventForm is the create-event modal's state.
type EventForm struct {
	Scope Scope
	Input CreateEventInput
	Error string
}

// CreateEventModal is the event creation form.
func CreateEventModal(form EventForm) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := markup.New(w)
		in := form.Input
		modalOpen(b, "Create event")
		errorBanner(b, form.Error)

		b.Raw(`<form class="modal-form"`).
			Attr("hx-post", form.Scope.BasePath()+"/events").
			Attr("hx-target", ModalTarget).
			Raw(">")
		csrfField(ctx, b)

		input := func(label, typ, name, value string, required bool) {
			b.Raw("<label>").Text(label).Raw(` <input`).Attr("type", typ).Attr("name", name).Attr("value", value).
				Flag("required", required).Raw("></label>")
		}
		input("Title", "text", "title", in.Title, true)

		b.Raw(`<label>Event type <select name="eventType" required>`)
		for _, t := range EventTypes {
			b.Raw("<option").Attr("value", string(t)).Flag("selected", in.EventType == string(t)).Raw(">").
				Text(t.Label()).Raw("</option>")
		}
		b.Raw("</select></label>")

		b.Raw(`<label>Fixture type (fixtures only) <select name="fixtureType">`,
			`<option value="">Not set</option>`)
		for _, ft := range []FixtureType{FixtureCompetitive, FixtureInvitational} {
			b.Raw("<option").Attr("value", string(ft)).Flag("selected", in.FixtureType == string(ft)).Raw(">").
				Text(strings.ToLower(string(ft))).Raw("</option>")
		}
		b.Raw("</select></label>")

		input("Start date", "date", "startDate", in.StartDate, true)
		input("End date", "date", "endDate", in.EndDate, false)
		input("Start time", "time", "startTime", in.StartTime, false)
		input("End time", "time", "endTime", in.EndTime, false)
		input("Location", "text", "location", in.Location, false)
		b.Raw(`<label>Description <textarea name="description">`).Text(in.Description).Raw("</textarea></label>")
		b.Raw(`<label>Internal notes <textarea name="notes">`).Text(in.Notes).Raw("</textarea></label>")

		b.Raw(`<div class="modal-actions"><button type="button" class="btn" data-close-modal>Cancel</button>`,
			`<button type="submit" class="btn btn-primary">Create event</button></div></form>`)
		modalClose(b)
		return b.Err()
	})
}

// EventCreatedModal confirms a creation the platform flagged as
// conflicting. The event stands; the warning is for information.
func EventCreatedModal(event *Event) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := markup.New(w)
		modalOpen(b, "Event created")
		b.Raw(`<div class="alert alert-warning" role="status">Event created; conflict flagged for admin review: `).
			Text(event.ConflictWarning).Raw("</div>")
		b.Raw(`<p>`).Text(event.Title).Raw(" on ").Text(longDate(event.Start)).Raw("</p>")
		b.Raw(`<div class="modal-actions"><button type="button" class="btn btn-primary" data-close-modal>OK</button></div>`)
		modalClose(b)
		return b.Err()
	})
}

// EmptyModal clears the modal slot.
func EmptyModal() templ.Component {
	return templ.NopComponent
}
