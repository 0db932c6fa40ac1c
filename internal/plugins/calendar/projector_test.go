package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clubSnapshot() *Snapshot {
	return &Snapshot{
		Scope: "club-1",
		Month: march2025,
		Events: []Event{
			competitiveFixture("f1", "2025-03-14"),
			clubEvent("t1", "2025-03-15", EventTypeTraining),
			clubEvent("s1", "2025-03-13", EventTypeSocial),
		},
		Interests: []InterestAggregate{
			{Date: day("2025-03-20"), TotalSubmissions: 2, UniqueUsers: 1, ClubCount: 1},
		},
		Holidays:         []Holiday{{Name: "St Patrick's Day", Date: day("2025-03-17")}},
		BlockedWeekends:  []BlockedWeekend{{Start: day("2025-03-22"), End: day("2025-03-23")}},
		PriorityWeekends: []PriorityWeekend{{ID: "p1", Date: day("2025-03-29"), Message: "County final"}},
	}
}

func TestProjector_OnlyEventsStartingThatDay(t *testing.T) {
	p := NewProjector(clubSnapshot(), DefaultFilters(), Facets{})

	for d := march2025.First(); march2025.Contains(d); d = d.AddDays(1) {
		for _, e := range p.Day(d).Events {
			assert.Equal(t, d, e.Start, "event %s projected onto %s", e.ID, d)
		}
	}

	proj := p.Day(day("2025-03-14"))
	require.Len(t, proj.Events, 1)
	assert.Equal(t, "f1", proj.Events[0].ID)
	assert.Equal(t, BadgeCompetitive, proj.Badge)
}

func TestProjector_MultiDayEventOnlyOnStart(t *testing.T) {
	snap := &Snapshot{Scope: "club-1", Month: march2025, Events: []Event{{
		ID: "camp", Title: "Camp", Type: EventTypeTraining, Source: SourceClub,
		Start: day("2025-03-10"), End: day("2025-03-12"),
	}}}
	p := NewProjector(snap, DefaultFilters(), Facets{})

	assert.Len(t, p.Day(day("2025-03-10")).Events, 1)
	assert.Empty(t, p.Day(day("2025-03-11")).Events)
}

func TestProjector_HolidaysBlockedPriorityInterest(t *testing.T) {
	p := NewProjector(clubSnapshot(), DefaultFilters(), Facets{})

	assert.Equal(t, "St Patrick's Day", p.Day(day("2025-03-17")).Holidays[0].Name)
	assert.True(t, p.Day(day("2025-03-22")).Blocked)
	assert.True(t, p.Day(day("2025-03-23")).Blocked)
	assert.False(t, p.Day(day("2025-03-24")).Blocked)
	require.NotNil(t, p.Day(day("2025-03-29")).Priority)
	assert.Equal(t, "County final", p.Day(day("2025-03-29")).Priority.Message)

	assert.Equal(t, 2, p.Day(day("2025-03-20")).Interest.TotalSubmissions)
	empty := p.Day(day("2025-03-05"))
	assert.Equal(t, InterestAggregate{Date: day("2025-03-05")}, empty.Interest)
	assert.Empty(t, empty.Events)
	assert.Equal(t, BadgeNone, empty.Badge)
}

func TestProjector_VisibilityFilters(t *testing.T) {
	snap := clubSnapshot()

	noFixtures := NewProjector(snap, DefaultFilters().Toggle(FilterPublic), Facets{})
	assert.Empty(t, noFixtures.Day(day("2025-03-14")).Events)
	assert.Len(t, noFixtures.Day(day("2025-03-15")).Events, 1)

	noClub := NewProjector(snap, DefaultFilters().Toggle(FilterPrivate), Facets{})
	assert.Len(t, noClub.Day(day("2025-03-14")).Events, 1)
	assert.Empty(t, noClub.Day(day("2025-03-15")).Events)
}

func TestProjector_ClubEventTypedAsFixtureIsPrivate(t *testing.T) {
	snap := &Snapshot{Scope: "club-1", Month: march2025, Events: []Event{{
		ID: "c1", Title: "Challenge match", Type: EventTypeFixture, Source: SourceClub, Start: day("2025-03-14"),
	}}}

	privateOnly := NewProjector(snap, DefaultFilters().Toggle(FilterPublic), Facets{}).Day(day("2025-03-14"))
	require.Len(t, privateOnly.Events, 1)
	assert.Equal(t, BadgeNone, privateOnly.Badge)

	publicOnly := NewProjector(snap, DefaultFilters().Toggle(FilterPrivate), Facets{}).Day(day("2025-03-14"))
	assert.Empty(t, publicOnly.Events)
}

func TestProjector_UnifiedFacets(t *testing.T) {
	munich := &Club{ID: "m", Name: "Munich", Country: "Germany", Sports: []string{"Gaelic Football", "Hurling"}}
	paris := &Club{ID: "p", Name: "Paris", Country: "France", Sports: []string{"Ladies Football"}}

	withClub := func(e Event, c *Club) Event { e.Club = c; return e }
	snap := &Snapshot{Scope: UnifiedScope, Month: march2025, Events: []Event{
		withClub(competitiveFixture("m1", "2025-03-08"), munich),
		withClub(competitiveFixture("p1", "2025-03-08"), paris),
		{ID: "x", Title: "Blitz", Type: EventTypeTournament, Source: SourceOther, Start: day("2025-03-08"), Location: "Berlin, Germany"},
	}}

	byCountry := NewProjector(snap, DefaultFilters(), Facets{Country: "germ"}).Day(day("2025-03-08"))
	assert.ElementsMatch(t, []string{"m1", "x"}, ids(byCountry.Events))

	bySport := NewProjector(snap, DefaultFilters(), Facets{Sports: []string{"hurling"}}).Day(day("2025-03-08"))
	assert.Equal(t, []string{"m1"}, ids(bySport.Events))

	clubSnap := *snap
	clubSnap.Scope = "m"
	ignored := NewProjector(&clubSnap, DefaultFilters(), Facets{Country: "nowhere"}).Day(day("2025-03-08"))
	assert.Len(t, ignored.Events, 3, "facets only apply to the unified view")
}

func ids(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
