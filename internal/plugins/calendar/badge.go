package calendar

// Badge is the single event icon a day cell shows. Higher values win.
type Badge int

const (
	BadgeNone Badge = iota
	BadgeInvitational
	BadgeCompetitive
)

// String returns the CSS modifier for the badge.
func (b Badge) String() string {
	switch b {
	case BadgeCompetitive:
		return "competitive"
	case BadgeInvitational:
		return "invitational"
	}
	return "none"
}

// Label returns the badge's tooltip text.
func (b Badge) Label() string {
	switch b {
	case BadgeCompetitive:
		return "Competitive fixture"
	case BadgeInvitational:
		return "Invitational or tournament"
	}
	return ""
}

// badgeRule maps a kind of event to its badge.
type badgeRule struct {
	badge Badge
	match func(Event) bool
}

// badgePrecedence is checked top to bottom; the first match decides an
// event's badge. Adding a kind of event is a new row here.
var badgePrecedence = []badgeRule{
	{BadgeCompetitive, func(e Event) bool {
		return e.IsFixture() && e.FixtureType == FixtureCompetitive
	}},
	{BadgeInvitational, func(e Event) bool {
		return e.IsFixture() && e.FixtureType != FixtureCompetitive
	}},
	{BadgeInvitational, func(e Event) bool {
		return e.Type == EventTypeTournament
	}},
}

// BadgeFor returns the badge of a single event.
func BadgeFor(e Event) Badge {
	for _, rule := range badgePrecedence {
		if rule.match(e) {
			return rule.badge
		}
	}
	return BadgeNone
}

// DayBadge returns the highest-ranked badge among events.
func DayBadge(events []Event) Badge {
	best := BadgeNone
	for _, e := range events {
		if b := BadgeFor(e); b > best {
			best = b
		}
	}
	return best
}
