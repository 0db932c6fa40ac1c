package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
)

// UnifiedPayload is the cross-club endpoint's combined response.
type UnifiedPayload struct {
	Events           []Event
	Interests        []InterestAggregate
	Holidays         []Holiday
	PriorityWeekends []PriorityWeekend
}

// CalendarRepository reads and writes calendar data through the platform
// API. Every method takes the viewer's credential so the platform can
// apply its own access rules.
type CalendarRepository interface {
	ListEvents(ctx context.Context, credential, clubID string, from, to civil.Date) ([]Event, error)
	ListInterest(ctx context.Context, credential, clubID string, from, to civil.Date) ([]InterestAggregate, error)
	ListHolidays(ctx context.Context, credential, country string, year int) ([]Holiday, error)
	ListBlockedWeekends(ctx context.Context, credential, clubID string) ([]BlockedWeekend, error)
	ListPriorityWeekends(ctx context.Context, credential string, from, to civil.Date) ([]PriorityWeekend, error)
	GetUnified(ctx context.Context, credential string, from, to civil.Date) (*UnifiedPayload, error)

	CreateEvent(ctx context.Context, credential string, req createEventRequest) (*Event, error)
	SubmitInterest(ctx context.Context, credential string, req interestRequest) error
}

// apiClient is the slice of the platform client the repository needs.
type apiClient interface {
	Get(ctx context.Context, path string, query url.Values, credential string, dest any) error
	Post(ctx context.Context, path string, body any, credential string, dest any) error
}

// apiRepository implements CalendarRepository over the platform API.
type apiRepository struct {
	client   apiClient
	validate *validator.Validate
}

// NewCalendarRepository creates a repository backed by the platform client.
func NewCalendarRepository(client apiClient) CalendarRepository {
	return &apiRepository{client: client, validate: newValidator()}
}

func rangeQuery(from, to civil.Date) url.Values {
	return url.Values{
		"startDate": {formatDay(from)},
		"endDate":   {formatDay(to)},
	}
}

// list fetches path and decodes it into typed entities.
func list[D any, T any](ctx context.Context, r *apiRepository, path string, query url.Values, credential string, convert func(D) (T, error)) ([]T, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, path, query, credential, &raw); err != nil {
		return nil, err
	}
	items, dropped, err := decodeList(r.validate, raw, convert)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if dropped > 0 {
		slog.Warn("dropped malformed upstream records",
			slog.String("collection", path),
			slog.Int("dropped", dropped),
		)
	}
	return items, nil
}

// ListEvents returns events starting between from and to inclusive.
func (r *apiRepository) ListEvents(ctx context.Context, credential, clubID string, from, to civil.Date) ([]Event, error) {
	q := rangeQuery(from, to)
	q.Set("clubId", clubID)
	return list(ctx, r, "events", q, credential, eventDTO.toEvent)
}

// ListInterest returns per-day interest aggregates. An empty clubID asks
// for every club.
func (r *apiRepository) ListInterest(ctx context.Context, credential, clubID string, from, to civil.Date) ([]InterestAggregate, error) {
	q := rangeQuery(from, to)
	if clubID != "" {
		q.Set("clubId", clubID)
	}
	return list(ctx, r, "interest", q, credential, interestDTO.toInterest)
}

// ListHolidays returns a country's public holidays for a year.
func (r *apiRepository) ListHolidays(ctx context.Context, credential, country string, year int) ([]Holiday, error) {
	q := url.Values{"country": {country}, "year": {strconv.Itoa(year)}}
	return list(ctx, r, "holidays", q, credential, holidayDTO.toHoliday)
}

// ListBlockedWeekends returns the club's unavailable ranges.
func (r *apiRepository) ListBlockedWeekends(ctx context.Context, credential, clubID string) ([]BlockedWeekend, error) {
	q := url.Values{"clubId": {clubID}}
	return list(ctx, r, "blocked-weekends", q, credential, blockedWeekendDTO.toBlockedWeekend)
}

// ListPriorityWeekends returns flagged dates in range.
func (r *apiRepository) ListPriorityWeekends(ctx context.Context, credential string, from, to civil.Date) ([]PriorityWeekend, error) {
	return list(ctx, r, "priority-weekends", rangeQuery(from, to), credential, priorityWeekendDTO.toPriorityWeekend)
}

// GetUnified returns the combined cross-club payload. A member that is
// missing or malformed decodes as empty rather than failing the rest.
func (r *apiRepository) GetUnified(ctx context.Context, credential string, from, to civil.Date) (*UnifiedPayload, error) {
	var dto unifiedDTO
	if err := r.client.Get(ctx, "unified", rangeQuery(from, to), credential, &dto); err != nil {
		return nil, err
	}

	payload := &UnifiedPayload{}
	payload.Events = decodeMember(r, "unified.events", dto.Events, eventDTO.toEvent)
	payload.Interests = decodeMember(r, "unified.interests", dto.Interests, interestDTO.toInterest)
	payload.Holidays = decodeMember(r, "unified.holidays", dto.Holidays, holidayDTO.toHoliday)
	payload.PriorityWeekends = decodeMember(r, "unified.priorityWeekends", dto.PriorityWeekends, priorityWeekendDTO.toPriorityWeekend)
	return payload, nil
}

func decodeMember[D any, T any](r *apiRepository, name string, raw json.RawMessage, convert func(D) (T, error)) []T {
	if len(raw) == 0 {
		return nil
	}
	items, dropped, err := decodeList(r.validate, raw, convert)
	if err != nil || dropped > 0 {
		slog.Warn("unified payload member degraded",
			slog.String("collection", name),
			slog.Int("dropped", dropped),
			slog.Any("error", err),
		)
	}
	return items
}

// CreateEvent posts a new event. The platform may attach a conflict
// warning to an otherwise successful creation.
func (r *apiRepository) CreateEvent(ctx context.Context, credential string, req createEventRequest) (*Event, error) {
	var resp createEventResponse
	if err := r.client.Post(ctx, "events", req, credential, &resp); err != nil {
		return nil, err
	}

	dto := resp.eventDTO
	if resp.Event != nil {
		warning := dto.ConflictWarning
		dto = *resp.Event
		if dto.ConflictWarning == "" {
			dto.ConflictWarning = warning
		}
	}

	event, err := dto.toEvent()
	if err != nil {
		// The creation succeeded; fall back to what was submitted.
		start, _ := parseDay(req.StartDate)
		event = Event{
			ID:              dto.ID,
			Title:           req.Title,
			Type:            EventType(req.EventType),
			Source:          EventSource(req.EventSource),
			FixtureType:     FixtureType(req.FixtureType),
			Start:           start,
			End:             start,
			ConflictWarning: dto.ConflictWarning,
		}
	}
	return &event, nil
}

// SubmitInterest posts one interest submission.
func (r *apiRepository) SubmitInterest(ctx context.Context, credential string, req interestRequest) error {
	return r.client.Post(ctx, "interest", req, credential, nil)
}
