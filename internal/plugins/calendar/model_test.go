package calendar

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonth_NavigationRollsYears(t *testing.T) {
	dec := Month{Year: 2024, Month: time.December}
	jan := Month{Year: 2025, Month: time.January}

	assert.Equal(t, jan, dec.Next())
	assert.Equal(t, dec, jan.Prev())
	assert.Equal(t, Month{Year: 2025, Month: time.February}, jan.Next())
}

func TestMonth_Bounds(t *testing.T) {
	assert.Equal(t, day("2025-03-01"), march2025.First())
	assert.Equal(t, day("2025-03-31"), march2025.Last())
	assert.Equal(t, 29, Month{Year: 2024, Month: time.February}.Days())
	assert.Equal(t, 28, Month{Year: 2025, Month: time.February}.Days())
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2025-03")
	require.NoError(t, err)
	assert.Equal(t, march2025, m)
	assert.Equal(t, "2025-03", m.String())

	_, err = ParseMonth("March")
	assert.Error(t, err)
}

func TestBlockedWeekend_ContainsIsInclusive(t *testing.T) {
	b := BlockedWeekend{Start: day("2025-03-22"), End: day("2025-03-23")}

	assert.False(t, b.Contains(day("2025-03-21")))
	assert.True(t, b.Contains(day("2025-03-22")))
	assert.True(t, b.Contains(day("2025-03-23")))
	assert.False(t, b.Contains(day("2025-03-24")))
}

func TestScope(t *testing.T) {
	assert.Equal(t, UnifiedScope, ScopeFor(""))
	assert.Equal(t, "", UnifiedScope.ClubID())
	assert.Equal(t, "/calendar", UnifiedScope.BasePath())

	club := ScopeFor("club-1")
	assert.False(t, club.IsUnified())
	assert.Equal(t, "club-1", club.ClubID())
	assert.Equal(t, "/clubs/club-1/calendar", club.BasePath())
}

func TestFilters_DefaultsAndParsing(t *testing.T) {
	assert.Equal(t, DefaultFilters(), ParseFilters(url.Values{}))

	f := ParseFilters(url.Values{"public": {"0"}, "interest": {"false"}})
	assert.False(t, f.ShowPublic)
	assert.True(t, f.ShowPrivate)
	assert.False(t, f.ShowInterest)
}

func TestFilters_ToggleTwiceIsIdentity(t *testing.T) {
	for _, name := range []string{FilterPublic, FilterPrivate, FilterInterest} {
		f := DefaultFilters()
		assert.Equal(t, f, f.Toggle(name).Toggle(name), name)
	}
}

func TestFilters_EncodeRoundTrips(t *testing.T) {
	f := DefaultFilters().Toggle(FilterPrivate)
	q := url.Values{}
	f.Encode(q)

	assert.Equal(t, "0", q.Get(FilterPrivate))
	assert.False(t, q.Has(FilterPublic))
	assert.Equal(t, f, ParseFilters(q))
}

func TestParseFacets(t *testing.T) {
	f := ParseFacets(url.Values{"country": {" Germany "}, "sport": {"Hurling", "Hurling", ""}})

	assert.Equal(t, "Germany", f.Country)
	assert.Equal(t, []string{"Hurling"}, f.Sports)
	assert.True(t, f.Active())
	assert.False(t, Facets{}.Active())
}
