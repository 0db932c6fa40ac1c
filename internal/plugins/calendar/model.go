// Package calendar renders the shared club calendar: a month grid that merges
// events, interest submissions, public holidays, blocked weekends and
// priority weekends fetched from the club platform API. It serves both a
// single club's admin calendar and the unified cross-club view.
//
// Data flow: Handler → Orchestrator → Service (cache, Fetcher) → Snapshot →
// Projector (per day) → BuildCell → views.
package calendar

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/keyxmakerx/clubcal/internal/plugins/auth"
)

// Permissions is the viewer's capability record for the current scope.
type Permissions = auth.Permissions

// EventType is the kind of activity an event describes.
type EventType string

const (
	EventTypeFixture    EventType = "FIXTURE"
	EventTypeTournament EventType = "TOURNAMENT"
	EventTypeTraining   EventType = "TRAINING"
	EventTypeSocial     EventType = "SOCIAL"
)

// EventTypes lists every event type in form display order.
var EventTypes = []EventType{EventTypeFixture, EventTypeTournament, EventTypeTraining, EventTypeSocial}

// Label returns the human-readable type name.
func (t EventType) Label() string {
	switch t {
	case EventTypeFixture:
		return "Fixture"
	case EventTypeTournament:
		return "Tournament"
	case EventTypeTraining:
		return "Training"
	case EventTypeSocial:
		return "Social"
	}
	return string(t)
}

// EventSource records where an event came from.
type EventSource string

const (
	SourceFixture EventSource = "FIXTURE"
	SourceClub    EventSource = "CLUB"
	SourceOther   EventSource = "OTHER"
)

// FixtureType distinguishes sanctioned from friendly fixtures. Only
// meaningful for fixture events; empty elsewhere.
type FixtureType string

const (
	FixtureCompetitive  FixtureType = "COMPETITIVE"
	FixtureInvitational FixtureType = "INVITATIONAL"
)

// Club is the owning club of an event, as embedded by the platform.
type Club struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Country  string   `json:"country,omitempty"`
	CrestURL string   `json:"crestUrl,omitempty"`
	Sports   []string `json:"sports,omitempty"`
}

// Event is a calendar entry. Dates are civil dates: an event belongs to
// exactly the day the platform recorded, whatever the viewer's timezone.
type Event struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	Type            EventType   `json:"eventType"`
	Source          EventSource `json:"eventSource"`
	FixtureType     FixtureType `json:"fixtureType,omitempty"`
	Start           civil.Date  `json:"startDate"`
	End             civil.Date  `json:"endDate"`
	StartTime       string      `json:"startTime,omitempty"`
	EndTime         string      `json:"endTime,omitempty"`
	Location        string      `json:"location,omitempty"`
	Club            *Club       `json:"club,omitempty"`
	ConflictWarning string      `json:"conflictWarning,omitempty"`
}

// IsFixture reports whether the event came from the fixture feed. A club
// may label its own event FIXTURE; that does not make it a public fixture.
func (e Event) IsFixture() bool {
	return e.Source == SourceFixture
}

// InterestAggregate summarises interest submissions for one day.
// UniqueUsers never exceeds TotalSubmissions.
type InterestAggregate struct {
	Date             civil.Date `json:"date"`
	TotalSubmissions int        `json:"totalSubmissions"`
	UniqueUsers      int        `json:"uniqueUsers"`
	ClubCount        int        `json:"clubCount"`
}

// Holiday is a public holiday.
type Holiday struct {
	ID   string     `json:"id,omitempty"`
	Name string     `json:"name"`
	Date civil.Date `json:"date"`
}

// BlockedWeekend is an inclusive range a club declared itself unavailable.
type BlockedWeekend struct {
	Start civil.Date `json:"startDate"`
	End   civil.Date `json:"endDate"`
}

// Contains reports whether d lies within the range, both ends included.
func (b BlockedWeekend) Contains(d civil.Date) bool {
	return !d.Before(b.Start) && !d.After(b.End)
}

// PriorityWeekend is an admin-flagged date of elevated scheduling importance.
type PriorityWeekend struct {
	ID      string     `json:"id,omitempty"`
	Date    civil.Date `json:"date"`
	Message string     `json:"message,omitempty"`
}

// --- Month ---

// Month is a calendar month of the Gregorian calendar.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing d.
func MonthOf(d civil.Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// First returns the first day of the month.
func (m Month) First() civil.Date {
	return civil.Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Last returns the last day of the month.
func (m Month) Last() civil.Date {
	return m.Next().First().AddDays(-1)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.Last().Day
}

// Prev returns the previous month, rolling back across a year boundary.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the following month, rolling over a year boundary.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Contains reports whether d falls in the month.
func (m Month) Contains(d civil.Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

// String returns "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Title returns e.g. "March 2025".
func (m Month) Title() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// --- Scope ---

// Scope selects whose calendar is shown: a club ID, or UnifiedScope for
// the cross-club view.
type Scope string

// UnifiedScope is the cross-club calendar.
const UnifiedScope Scope = "unified"

// ScopeFor returns the scope for a route's club param.
func ScopeFor(clubID string) Scope {
	if clubID == "" {
		return UnifiedScope
	}
	return Scope(clubID)
}

// IsUnified reports whether this is the cross-club view.
func (s Scope) IsUnified() bool {
	return s == UnifiedScope
}

// ClubID returns the club ID, or "" for the unified view.
func (s Scope) ClubID() string {
	if s.IsUnified() {
		return ""
	}
	return string(s)
}

// BasePath returns the URL prefix of the scope's calendar pages.
func (s Scope) BasePath() string {
	if s.IsUnified() {
		return "/calendar"
	}
	return "/clubs/" + url.PathEscape(string(s)) + "/calendar"
}

// --- Snapshot ---

// Snapshot is everything fetched for one scope and month. A snapshot is
// read-only once built; cached snapshots are shared between requests.
type Snapshot struct {
	Scope            Scope               `json:"scope"`
	Month            Month               `json:"month"`
	Events           []Event             `json:"events"`
	Interests        []InterestAggregate `json:"interests"`
	Holidays         []Holiday           `json:"holidays"`
	BlockedWeekends  []BlockedWeekend    `json:"blockedWeekends"`
	PriorityWeekends []PriorityWeekend   `json:"priorityWeekends"`

	// Degraded names the collections that could not be loaded and were
	// replaced by empty ones.
	Degraded []string `json:"degraded,omitempty"`
}

// IsDegraded reports whether any collection failed to load.
func (s *Snapshot) IsDegraded() bool {
	return len(s.Degraded) > 0
}

// --- Filters ---

// Filter query parameter names.
const (
	FilterPublic   = "public"
	FilterPrivate  = "private"
	FilterInterest = "interest"
)

// Filters are the viewer's visibility toggles. They only suppress what is
// rendered; they never change what is fetched.
type Filters struct {
	// ShowPublic shows fixtures.
	ShowPublic bool
	// ShowPrivate shows club events.
	ShowPrivate bool
	// ShowInterest shows the interest heatmap.
	ShowInterest bool
}

// DefaultFilters shows everything.
func DefaultFilters() Filters {
	return Filters{ShowPublic: true, ShowPrivate: true, ShowInterest: true}
}

// ParseFilters reads toggles from a query string. A toggle is off only when
// its parameter is explicitly "0" or "false".
func ParseFilters(q url.Values) Filters {
	f := DefaultFilters()
	f.ShowPublic = flag(q, FilterPublic)
	f.ShowPrivate = flag(q, FilterPrivate)
	f.ShowInterest = flag(q, FilterInterest)
	return f
}

func flag(q url.Values, name string) bool {
	switch q.Get(name) {
	case "0", "false", "off":
		return false
	}
	return true
}

// Toggle returns a copy with the named toggle flipped.
func (f Filters) Toggle(name string) Filters {
	switch name {
	case FilterPublic:
		f.ShowPublic = !f.ShowPublic
	case FilterPrivate:
		f.ShowPrivate = !f.ShowPrivate
	case FilterInterest:
		f.ShowInterest = !f.ShowInterest
	}
	return f
}

// Encode writes the toggles that differ from the defaults into q.
func (f Filters) Encode(q url.Values) {
	set := func(name string, on bool) {
		if on {
			q.Del(name)
		} else {
			q.Set(name, "0")
		}
	}
	set(FilterPublic, f.ShowPublic)
	set(FilterPrivate, f.ShowPrivate)
	set(FilterInterest, f.ShowInterest)
}

// --- Facets ---

// Facets are the unified view's sidebar filters.
type Facets struct {
	// Country keeps events whose club country or location contains it,
	// case-insensitively. Empty disables the facet.
	Country string
	// Sports keeps events whose club plays any of them. Empty disables
	// the facet.
	Sports []string
}

// ParseFacets reads facets from "country" and repeated "sport" params.
func ParseFacets(q url.Values) Facets {
	f := Facets{Country: strings.TrimSpace(q.Get("country"))}
	for _, s := range q["sport"] {
		if s = strings.TrimSpace(s); s != "" && !slices.Contains(f.Sports, s) {
			f.Sports = append(f.Sports, s)
		}
	}
	return f
}

// Encode writes the active facets into q.
func (f Facets) Encode(q url.Values) {
	q.Del("country")
	q.Del("sport")
	if f.Country != "" {
		q.Set("country", f.Country)
	}
	for _, s := range f.Sports {
		q.Add("sport", s)
	}
}

// Active reports whether any facet restricts the view.
func (f Facets) Active() bool {
	return f.Country != "" || len(f.Sports) > 0
}
