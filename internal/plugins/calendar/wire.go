package calendar

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"

	"github.com/keyxmakerx/clubcal/internal/sanitize"
)

// clockPattern matches "HH:MM" with an optional ":SS" the platform sometimes
// appends.
var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// newValidator returns a validator with the calendar's custom tags:
//
//	day    an ISO date, optionally followed by a time part
//	clock  a wall-clock time, HH:MM
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("day", func(fl validator.FieldLevel) bool {
		_, err := parseDay(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	return v
}

// parseDay reads the civil date from the literal YYYY-MM-DD prefix of an
// ISO date or timestamp. The time and zone parts are ignored so a
// midnight-UTC timestamp never slides onto the previous day.
func parseDay(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return civil.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return civil.ParseDate(s[:10])
}

// normalizeClock trims seconds from "HH:MM:SS".
func normalizeClock(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

// --- Wire DTOs (decoded from the platform API) ---

type clubDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Country  string   `json:"country"`
	CrestURL string   `json:"crestUrl"`
	Sports   []string `json:"sportTypes"`
}

type eventDTO struct {
	ID              string   `json:"id" validate:"required"`
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description"`
	EventType       string   `json:"eventType" validate:"required,oneof=FIXTURE TOURNAMENT TRAINING SOCIAL"`
	EventSource     string   `json:"eventSource" validate:"omitempty,oneof=FIXTURE CLUB OTHER"`
	FixtureType     string   `json:"fixtureType" validate:"omitempty,oneof=COMPETITIVE INVITATIONAL"`
	StartDate       string   `json:"startDate" validate:"required,day"`
	EndDate         string   `json:"endDate" validate:"omitempty,day"`
	StartTime       string   `json:"startTime" validate:"omitempty,clock"`
	EndTime         string   `json:"endTime" validate:"omitempty,clock"`
	Location        string   `json:"location"`
	ClubID          string   `json:"clubId"`
	Club            *clubDTO `json:"club"`
	ConflictWarning string   `json:"conflictWarning"`
}

func (d eventDTO) toEvent() (Event, error) {
	start, err := parseDay(d.StartDate)
	if err != nil {
		return Event{}, err
	}
	end := start
	if d.EndDate != "" {
		if end, err = parseDay(d.EndDate); err != nil {
			return Event{}, err
		}
		if end.Before(start) {
			end = start
		}
	}

	e := Event{
		ID:              d.ID,
		Title:           sanitize.Text(d.Title),
		Description:     sanitize.Text(d.Description),
		Type:            EventType(d.EventType),
		Source:          EventSource(d.EventSource),
		Start:           start,
		End:             end,
		StartTime:       normalizeClock(d.StartTime),
		EndTime:         normalizeClock(d.EndTime),
		Location:        sanitize.Text(d.Location),
		ConflictWarning: sanitize.Text(d.ConflictWarning),
	}
	if e.Source == "" {
		e.Source = SourceOther
		if e.Type == EventTypeFixture {
			e.Source = SourceFixture
		}
	}
	if e.IsFixture() {
		e.FixtureType = FixtureType(d.FixtureType)
	}
	if d.Club != nil {
		e.Club = &Club{
			ID:       d.Club.ID,
			Name:     sanitize.Text(d.Club.Name),
			Country:  sanitize.Text(d.Club.Country),
			CrestURL: d.Club.CrestURL,
			Sports:   d.Club.Sports,
		}
	} else if d.ClubID != "" {
		e.Club = &Club{ID: d.ClubID}
	}
	return e, nil
}

type interestDTO struct {
	Date             string `json:"date" validate:"required,day"`
	TotalSubmissions int    `json:"totalSubmissions" validate:"gte=0"`
	UniqueUsers      int    `json:"uniqueUsers" validate:"gte=0,ltefield=TotalSubmissions"`
	ClubCount        int    `json:"clubCount" validate:"gte=0"`
}

func (d interestDTO) toInterest() (InterestAggregate, error) {
	day, err := parseDay(d.Date)
	if err != nil {
		return InterestAggregate{}, err
	}
	return InterestAggregate{
		Date:             day,
		TotalSubmissions: d.TotalSubmissions,
		UniqueUsers:      d.UniqueUsers,
		ClubCount:        d.ClubCount,
	}, nil
}

type holidayDTO struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
	Date string `json:"date" validate:"required,day"`
}

func (d holidayDTO) toHoliday() (Holiday, error) {
	day, err := parseDay(d.Date)
	if err != nil {
		return Holiday{}, err
	}
	return Holiday{ID: d.ID, Name: sanitize.Text(d.Name), Date: day}, nil
}

type blockedWeekendDTO struct {
	StartDate string `json:"startDate" validate:"required,day"`
	EndDate   string `json:"endDate" validate:"required,day"`
}

func (d blockedWeekendDTO) toBlockedWeekend() (BlockedWeekend, error) {
	start, err := parseDay(d.StartDate)
	if err != nil {
		return BlockedWeekend{}, err
	}
	end, err := parseDay(d.EndDate)
	if err != nil {
		return BlockedWeekend{}, err
	}
	if end.Before(start) {
		return BlockedWeekend{}, fmt.Errorf("blocked weekend ends %s before it starts %s", end, start)
	}
	return BlockedWeekend{Start: start, End: end}, nil
}

type priorityWeekendDTO struct {
	ID      string `json:"id"`
	Date    string `json:"date" validate:"required,day"`
	Message string `json:"message"`
}

func (d priorityWeekendDTO) toPriorityWeekend() (PriorityWeekend, error) {
	day, err := parseDay(d.Date)
	if err != nil {
		return PriorityWeekend{}, err
	}
	return PriorityWeekend{ID: d.ID, Date: day, Message: sanitize.Text(d.Message)}, nil
}

type unifiedDTO struct {
	Events           json.RawMessage `json:"events"`
	Interests        json.RawMessage `json:"interests"`
	Holidays         json.RawMessage `json:"holidays"`
	PriorityWeekends json.RawMessage `json:"priorityWeekends"`
}

// decodeList parses a JSON array, validating and converting each element.
// Elements that fail are dropped; a payload that is not an array is an
// error. dropped counts the discarded elements.
func decodeList[D any, T any](v *validator.Validate, raw json.RawMessage, convert func(D) (T, error)) (items []T, dropped int, err error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, 0, fmt.Errorf("expected a JSON array: %w", err)
	}

	items = make([]T, 0, len(elems))
	for _, elem := range elems {
		var dto D
		if err := json.Unmarshal(elem, &dto); err != nil {
			dropped++
			continue
		}
		if err := v.Struct(dto); err != nil {
			dropped++
			continue
		}
		item, err := convert(dto)
		if err != nil {
			dropped++
			continue
		}
		items = append(items, item)
	}
	return items, dropped, nil
}

// --- Mutation payloads (sent to the platform API) ---

// createEventRequest is the body of POST events.
type createEventRequest struct {
	ClubID      string `json:"clubId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	EventType   string `json:"eventType"`
	EventSource string `json:"eventSource"`
	FixtureType string `json:"fixtureType,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	Location    string `json:"location,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// createEventResponse accepts both the bare event and {"event": ...,
// "conflictWarning": ...}.
type createEventResponse struct {
	eventDTO
	Event *eventDTO `json:"event"`
}

// interestRequest is the body of POST interest. A nil ClubID means
// "no preference".
type interestRequest struct {
	ClubID            *string `json:"clubId"`
	Date              string  `json:"date"`
	PreferredLocation string  `json:"preferredLocation,omitempty"`
}

// formatDay renders a civil date for query strings and request bodies.
func formatDay(d civil.Date) string {
	return d.In(time.UTC).Format(time.DateOnly)
}
