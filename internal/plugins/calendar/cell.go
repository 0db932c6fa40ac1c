package calendar

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// CellView is the view model of one day cell. It is derived entirely from a
// DayProjection; nothing in it is fetched separately.
type CellView struct {
	Date    civil.Date
	IsToday bool
	IsPast  bool

	// Interactive is false for past days unless the viewer can edit all
	// events.
	Interactive bool

	Events       []Event
	FixtureCount int
	EventCount   int
	Badge        Badge

	Holidays []Holiday
	Blocked  bool
	Priority *PriorityWeekend

	// ShowInterest gates every interest figure below. When false they are
	// all zero.
	ShowInterest   bool
	InterestTotal  int
	InterestUnique int
	Heat           int

	Tooltip []string
}

// HeatIntensity maps a submission count to a 0-100 heatmap intensity.
func HeatIntensity(total int) int {
	if total <= 0 {
		return 0
	}
	return min(100, total*10)
}

// BuildCell derives the cell for a projected day. Interest is only exposed
// to viewers who may see interest identities, whatever the filters say.
func BuildCell(proj DayProjection, today civil.Date, filters Filters, perms Permissions) CellView {
	cell := CellView{
		Date:     proj.Date,
		IsToday:  proj.Date == today,
		IsPast:   proj.Date.Before(today),
		Events:   proj.Events,
		Badge:    proj.Badge,
		Holidays: proj.Holidays,
		Blocked:  proj.Blocked,
		Priority: proj.Priority,
	}
	cell.ShowInterest = perms.CanViewInterestIdentities && filters.ShowInterest
	cell.Interactive = !cell.IsPast || perms.CanEditAllEvents

	for _, e := range proj.Events {
		if e.IsFixture() {
			cell.FixtureCount++
		} else {
			cell.EventCount++
		}
	}

	if cell.ShowInterest {
		cell.InterestTotal = proj.Interest.TotalSubmissions
		cell.InterestUnique = proj.Interest.UniqueUsers
		cell.Heat = HeatIntensity(proj.Interest.TotalSubmissions)
	}

	cell.Tooltip = tooltip(cell)
	return cell
}

func tooltip(cell CellView) []string {
	var lines []string
	if cell.FixtureCount > 0 {
		lines = append(lines, plural(cell.FixtureCount, "fixture"))
	}
	if cell.EventCount > 0 {
		lines = append(lines, plural(cell.EventCount, "event"))
	}
	if cell.ShowInterest && cell.InterestTotal > 0 {
		lines = append(lines, fmt.Sprintf("%s from %s",
			plural(cell.InterestTotal, "interest submission"),
			plural(cell.InterestUnique, "user")))
	}
	if len(cell.Holidays) > 0 {
		names := make([]string, len(cell.Holidays))
		for i, h := range cell.Holidays {
			names[i] = h.Name
		}
		lines = append(lines, "Holiday: "+strings.Join(names, ", "))
	}
	if cell.Blocked {
		lines = append(lines, "Blocked weekend")
	}
	if cell.Priority != nil {
		line := "Priority weekend"
		if cell.Priority.Message != "" {
			line += ": " + cell.Priority.Message
		}
		lines = append(lines, line)
	}
	return lines
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
