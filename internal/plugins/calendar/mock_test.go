package calendar

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"

	"github.com/keyxmakerx/clubcal/internal/plugins/auth"
)

// --- Mock Repository ---

// mockRepo implements CalendarRepository for testing. Unset functions
// return empty collections.
type mockRepo struct {
	listEventsFn           func(ctx context.Context, credential, clubID string, from, to civil.Date) ([]Event, error)
	listInterestFn         func(ctx context.Context, credential, clubID string, from, to civil.Date) ([]InterestAggregate, error)
	listHolidaysFn         func(ctx context.Context, credential, country string, year int) ([]Holiday, error)
	listBlockedWeekendsFn  func(ctx context.Context, credential, clubID string) ([]BlockedWeekend, error)
	listPriorityWeekendsFn func(ctx context.Context, credential string, from, to civil.Date) ([]PriorityWeekend, error)
	getUnifiedFn           func(ctx context.Context, credential string, from, to civil.Date) (*UnifiedPayload, error)
	createEventFn          func(ctx context.Context, credential string, req createEventRequest) (*Event, error)
	submitInterestFn       func(ctx context.Context, credential string, req interestRequest) error
}

func (m *mockRepo) ListEvents(ctx context.Context, credential, clubID string, from, to civil.Date) ([]Event, error) {
	if m.listEventsFn != nil {
		return m.listEventsFn(ctx, credential, clubID, from, to)
	}
	return nil, nil
}

func (m *mockRepo) ListInterest(ctx context.Context, credential, clubID string, from, to civil.Date) ([]InterestAggregate, error) {
	if m.listInterestFn != nil {
		return m.listInterestFn(ctx, credential, clubID, from, to)
	}
	return nil, nil
}

func (m *mockRepo) ListHolidays(ctx context.Context, credential, country string, year int) ([]Holiday, error) {
	if m.listHolidaysFn != nil {
		return m.listHolidaysFn(ctx, credential, country, year)
	}
	return nil, nil
}

func (m *mockRepo) ListBlockedWeekends(ctx context.Context, credential, clubID string) ([]BlockedWeekend, error) {
	if m.listBlockedWeekendsFn != nil {
		return m.listBlockedWeekendsFn(ctx, credential, clubID)
	}
	return nil, nil
}

func (m *mockRepo) ListPriorityWeekends(ctx context.Context, credential string, from, to civil.Date) ([]PriorityWeekend, error) {
	if m.listPriorityWeekendsFn != nil {
		return m.listPriorityWeekendsFn(ctx, credential, from, to)
	}
	return nil, nil
}

func (m *mockRepo) GetUnified(ctx context.Context, credential string, from, to civil.Date) (*UnifiedPayload, error) {
	if m.getUnifiedFn != nil {
		return m.getUnifiedFn(ctx, credential, from, to)
	}
	return &UnifiedPayload{}, nil
}

func (m *mockRepo) CreateEvent(ctx context.Context, credential string, req createEventRequest) (*Event, error) {
	if m.createEventFn != nil {
		return m.createEventFn(ctx, credential, req)
	}
	return nil, errors.New("createEvent not mocked")
}

func (m *mockRepo) SubmitInterest(ctx context.Context, credential string, req interestRequest) error {
	if m.submitInterestFn != nil {
		return m.submitInterestFn(ctx, credential, req)
	}
	return nil
}

// --- Mock Service ---

// mockService implements CalendarService for handler tests.
type mockService struct {
	loadMonthFn      func(ctx context.Context, viewer auth.Viewer, scope Scope, month Month) (*Snapshot, error)
	createEventFn    func(ctx context.Context, viewer auth.Viewer, clubID string, input CreateEventInput) (*Event, error)
	submitInterestFn func(ctx context.Context, viewer auth.Viewer, scope Scope, input InterestInput) error
}

func (m *mockService) LoadMonth(ctx context.Context, viewer auth.Viewer, scope Scope, month Month) (*Snapshot, error) {
	if m.loadMonthFn != nil {
		return m.loadMonthFn(ctx, viewer, scope, month)
	}
	return &Snapshot{Scope: scope, Month: month}, nil
}

func (m *mockService) CreateEvent(ctx context.Context, viewer auth.Viewer, clubID string, input CreateEventInput) (*Event, error) {
	if m.createEventFn != nil {
		return m.createEventFn(ctx, viewer, clubID, input)
	}
	return &Event{ID: "new"}, nil
}

func (m *mockService) SubmitInterest(ctx context.Context, viewer auth.Viewer, scope Scope, input InterestInput) error {
	if m.submitInterestFn != nil {
		return m.submitInterestFn(ctx, viewer, scope, input)
	}
	return nil
}

// --- Fixtures ---

func day(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

var march2025 = Month{Year: 2025, Month: 3}

func competitiveFixture(id, date string) Event {
	return Event{
		ID:          id,
		Title:       "Fixture " + id,
		Type:        EventTypeFixture,
		Source:      SourceFixture,
		FixtureType: FixtureCompetitive,
		Start:       day(date),
		End:         day(date),
	}
}

func clubEvent(id, date string, typ EventType) Event {
	return Event{ID: id, Title: "Event " + id, Type: typ, Source: SourceClub, Start: day(date), End: day(date)}
}

// allPerms grants every capability.
func allPerms() Permissions {
	return Permissions{
		CanViewCalendar:           true,
		CanCreateEvents:           true,
		CanEditAllEvents:          true,
		CanBlockWeekends:          true,
		CanFlagPriorityWeekends:   true,
		CanViewInterestIdentities: true,
		CanSubmitInterest:         true,
		CanViewAllCalendars:       true,
		CanManageHolidays:         true,
		CanAccessDigest:           true,
		CanViewInterest:           true,
	}
}
