package calendar

import (
	"slices"
	"strings"

	"cloud.google.com/go/civil"
)

// DayProjection is everything the grid knows about one day after filters
// and facets are applied.
type DayProjection struct {
	Date     civil.Date
	Events   []Event
	Holidays []Holiday
	Blocked  bool
	Priority *PriorityWeekend

	// Interest is the day's aggregate, zero-valued when there is none.
	Interest InterestAggregate

	Badge Badge
}

// Projector answers per-day questions about a snapshot. It is a pure
// function of its inputs; the indexes are built once up front.
type Projector struct {
	snap    *Snapshot
	filters Filters
	facets  Facets

	events    map[civil.Date][]Event
	holidays  map[civil.Date][]Holiday
	interests map[civil.Date]InterestAggregate
	priority  map[civil.Date]*PriorityWeekend
}

// NewProjector indexes snap by day. Facets only apply to the unified view.
func NewProjector(snap *Snapshot, filters Filters, facets Facets) *Projector {
	p := &Projector{
		snap:      snap,
		filters:   filters,
		facets:    facets,
		events:    make(map[civil.Date][]Event),
		holidays:  make(map[civil.Date][]Holiday),
		interests: make(map[civil.Date]InterestAggregate),
		priority:  make(map[civil.Date]*PriorityWeekend),
	}

	for _, e := range snap.Events {
		if p.visible(e) {
			p.events[e.Start] = append(p.events[e.Start], e)
		}
	}
	for _, h := range snap.Holidays {
		p.holidays[h.Date] = append(p.holidays[h.Date], h)
	}
	for _, agg := range snap.Interests {
		if _, seen := p.interests[agg.Date]; !seen {
			p.interests[agg.Date] = agg
		}
	}
	for i := range snap.PriorityWeekends {
		pw := &snap.PriorityWeekends[i]
		if _, seen := p.priority[pw.Date]; !seen {
			p.priority[pw.Date] = pw
		}
	}
	return p
}

// Day projects a single date. Events match on their start date only.
func (p *Projector) Day(d civil.Date) DayProjection {
	events := p.events[d]
	proj := DayProjection{
		Date:     d,
		Events:   events,
		Holidays: p.holidays[d],
		Priority: p.priority[d],
		Interest: InterestAggregate{Date: d},
		Badge:    DayBadge(events),
	}
	if agg, ok := p.interests[d]; ok {
		proj.Interest = agg
	}
	for _, b := range p.snap.BlockedWeekends {
		if b.Contains(d) {
			proj.Blocked = true
			break
		}
	}
	return proj
}

// visible applies the visibility toggles and, in the unified view, the
// sidebar facets.
func (p *Projector) visible(e Event) bool {
	if e.IsFixture() {
		if !p.filters.ShowPublic {
			return false
		}
	} else if !p.filters.ShowPrivate {
		return false
	}

	if !p.snap.Scope.IsUnified() {
		return true
	}
	if p.facets.Country != "" && !matchesCountry(e, p.facets.Country) {
		return false
	}
	if len(p.facets.Sports) > 0 && !playsAny(e.Club, p.facets.Sports) {
		return false
	}
	return true
}

func matchesCountry(e Event, country string) bool {
	needle := strings.ToLower(country)
	if e.Club != nil && strings.Contains(strings.ToLower(e.Club.Country), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(e.Location), needle)
}

func playsAny(club *Club, sports []string) bool {
	if club == nil {
		return false
	}
	for _, s := range club.Sports {
		if slices.ContainsFunc(sports, func(want string) bool { return strings.EqualFold(want, s) }) {
			return true
		}
	}
	return false
}
