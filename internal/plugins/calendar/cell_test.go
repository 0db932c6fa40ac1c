package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeatIntensity(t *testing.T) {
	assert.Equal(t, 0, HeatIntensity(0))
	assert.Equal(t, 20, HeatIntensity(2))
	assert.Equal(t, 100, HeatIntensity(10))
	assert.Equal(t, 100, HeatIntensity(57))
}

func TestBuildCell_InterestScenario(t *testing.T) {
	p := NewProjector(clubSnapshot(), DefaultFilters(), Facets{})
	cell := BuildCell(p.Day(day("2025-03-20")), day("2025-03-01"), DefaultFilters(), allPerms())

	assert.True(t, cell.ShowInterest)
	assert.Equal(t, 2, cell.InterestTotal)
	assert.Equal(t, 1, cell.InterestUnique)
	assert.Equal(t, 20, cell.Heat)
	assert.Contains(t, cell.Tooltip, "2 interest submissions from 1 user")
}

func TestBuildCell_InterestHiddenWithoutIdentityPermission(t *testing.T) {
	perms := allPerms()
	perms.CanViewInterestIdentities = false
	p := NewProjector(clubSnapshot(), DefaultFilters(), Facets{})

	for _, filters := range []Filters{DefaultFilters(), DefaultFilters().Toggle(FilterInterest)} {
		cell := BuildCell(p.Day(day("2025-03-20")), day("2025-03-01"), filters, perms)

		assert.False(t, cell.ShowInterest)
		assert.Zero(t, cell.InterestTotal)
		assert.Zero(t, cell.InterestUnique)
		assert.Zero(t, cell.Heat)
		for _, line := range cell.Tooltip {
			assert.NotContains(t, line, "interest")
		}
	}
}

func TestBuildCell_InterestFilterOff(t *testing.T) {
	p := NewProjector(clubSnapshot(), DefaultFilters(), Facets{})
	cell := BuildCell(p.Day(day("2025-03-20")), day("2025-03-01"), DefaultFilters().Toggle(FilterInterest), allPerms())

	assert.False(t, cell.ShowInterest)
	assert.Zero(t, cell.Heat)
}

func TestBuildCell_TodayAndPast(t *testing.T) {
	today := day("2025-03-15")
	viewer := Permissions{CanViewCalendar: true, CanSubmitInterest: true}
	p := NewProjector(clubSnapshot(), DefaultFilters(), Facets{})

	todayCell := BuildCell(p.Day(today), today, DefaultFilters(), viewer)
	assert.True(t, todayCell.IsToday)
	assert.False(t, todayCell.IsPast)
	assert.True(t, todayCell.Interactive)

	past := BuildCell(p.Day(day("2025-03-14")), today, DefaultFilters(), viewer)
	assert.True(t, past.IsPast)
	assert.False(t, past.Interactive)

	editor := viewer
	editor.CanEditAllEvents = true
	assert.True(t, BuildCell(p.Day(day("2025-03-14")), today, DefaultFilters(), editor).Interactive)
}

func TestBuildCell_Tooltip(t *testing.T) {
	p := NewProjector(clubSnapshot(), DefaultFilters(), Facets{})
	today := day("2025-03-01")

	assert.Equal(t, []string{"1 fixture"}, BuildCell(p.Day(day("2025-03-14")), today, DefaultFilters(), allPerms()).Tooltip)
	assert.Equal(t, []string{"Holiday: St Patrick's Day"}, BuildCell(p.Day(day("2025-03-17")), today, DefaultFilters(), allPerms()).Tooltip)
	assert.Equal(t, []string{"Blocked weekend"}, BuildCell(p.Day(day("2025-03-22")), today, DefaultFilters(), allPerms()).Tooltip)
	assert.Equal(t, []string{"Priority weekend: County final"}, BuildCell(p.Day(day("2025-03-29")), today, DefaultFilters(), allPerms()).Tooltip)
	assert.Empty(t, BuildCell(p.Day(day("2025-03-05")), today, DefaultFilters(), allPerms()).Tooltip)
}

func TestBuildCell_FilterToggleIsIdempotent(t *testing.T) {
	snap := clubSnapshot()
	today := day("2025-03-01")
	cells := func(f Filters) []CellView {
		p := NewProjector(snap, f, Facets{})
		var out []CellView
		for d := march2025.First(); march2025.Contains(d); d = d.AddDays(1) {
			out = append(out, BuildCell(p.Day(d), today, f, allPerms()))
		}
		return out
	}

	before := cells(DefaultFilters())
	for _, name := range []string{FilterPublic, FilterPrivate, FilterInterest} {
		assert.Equal(t, before, cells(DefaultFilters().Toggle(name).Toggle(name)), name)
	}
}
