package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/keyxmakerx/clubcal/internal/apperror"
	"github.com/keyxmakerx/clubcal/internal/plugins/auth"
	"github.com/keyxmakerx/clubcal/internal/upstream"
)

// NoClubPreference is the interest form's "no preference" club value.
const NoClubPreference = "none"

// CalendarService defines business logic for the calendar plugin.
type CalendarService interface {
	// LoadMonth returns the snapshot for scope and month, from cache when
	// possible. Upstream failures degrade collections rather than erroring.
	LoadMonth(ctx context.Context, viewer auth.Viewer, scope Scope, month Month) (*Snapshot, error)

	// CreateEvent creates an event on a club's calendar.
	CreateEvent(ctx context.Context, viewer auth.Viewer, clubID string, input CreateEventInput) (*Event, error)

	// SubmitInterest records one interest submission.
	SubmitInterest(ctx context.Context, viewer auth.Viewer, scope Scope, input InterestInput) error
}

// CreateEventInput is the event creation form.
type CreateEventInput struct {
	Title       string `form:"title" json:"title" validate:"required,max=200"`
	EventType   string `form:"eventType" json:"eventType" validate:"required,oneof=FIXTURE TOURNAMENT TRAINING SOCIAL"`
	FixtureType string `form:"fixtureType" json:"fixtureType" validate:"omitempty,oneof=COMPETITIVE INVITATIONAL"`
	StartDate   string `form:"startDate" json:"startDate" validate:"required,day"`
	EndDate     string `form:"endDate" json:"endDate" validate:"omitempty,day"`
	StartTime   string `form:"startTime" json:"startTime" validate:"omitempty,clock"`
	EndTime     string `form:"endTime" json:"endTime" validate:"omitempty,clock"`
	Location    string `form:"location" json:"location" validate:"max=200"`
	Description string `form:"description" json:"description" validate:"max=5000"`
	Notes       string `form:"notes" json:"notes" validate:"max=5000"`
}

// InterestInput is the interest submission form. ClubID is a club or
// NoClubPreference; empty means the scope's own club.
type InterestInput struct {
	ClubID            string `form:"clubId" json:"clubId" validate:"max=64"`
	Date              string `form:"date" json:"date" validate:"required,day"`
	PreferredLocation string `form:"preferredLocation" json:"preferredLocation" validate:"max=200"`
}

// calendarService is the default CalendarService implementation.
type calendarService struct {
	repo     CalendarRepository
	fetcher  *Fetcher
	cache    *MonthCache
	validate *validator.Validate
}

// NewCalendarService creates a CalendarService. cache may be nil.
func NewCalendarService(repo CalendarRepository, fetcher *Fetcher, cache *MonthCache) CalendarService {
	return &calendarService{
		repo:     repo,
		fetcher:  fetcher,
		cache:    cache,
		validate: newValidator(),
	}
}

// CanView reports whether perms allow viewing the scope's calendar.
func CanView(scope Scope, perms Permissions) bool {
	if scope.IsUnified() {
		return perms.CanViewCalendar || perms.CanViewAllCalendars
	}
	return perms.CanViewCalendar
}

// LoadMonth returns one month of data for the viewer.
func (s *calendarService) LoadMonth(ctx context.Context, viewer auth.Viewer, scope Scope, month Month) (*Snapshot, error) {
	if !CanView(scope, viewer.Permissions) {
		return nil, apperror.NewForbidden("you do not have permission to view this calendar")
	}

	if snap, ok := s.cache.Get(ctx, scope, month, viewer.Credential); ok {
		return snap, nil
	}
	snap := s.fetcher.FetchMonth(ctx, viewer.Credential, scope, month)
	s.cache.Put(ctx, viewer.Credential, snap)
	return snap, nil
}

// CreateEvent validates the form and creates the event upstream. A
// conflict warning on the result is advisory: the event still exists.
func (s *calendarService) CreateEvent(ctx context.Context, viewer auth.Viewer, clubID string, input CreateEventInput) (*Event, error) {
	if !viewer.Permissions.CanCreateEvents {
		return nil, apperror.NewForbidden("you do not have permission to create events")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Location = strings.TrimSpace(input.Location)
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err)
	}

	start, _ := parseDay(input.StartDate)
	if input.EndDate != "" {
		end, _ := parseDay(input.EndDate)
		if end.Before(start) {
			return nil, apperror.NewValidation("End date cannot be before the start date.")
		}
	}

	req := createEventRequest{
		ClubID:      clubID,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		EventType:   input.EventType,
		EventSource: string(SourceClub),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Location:    input.Location,
		Notes:       strings.TrimSpace(input.Notes),
	}
	if EventType(input.EventType) == EventTypeFixture {
		req.EventSource = string(SourceFixture)
		req.FixtureType = input.FixtureType
	}

	event, err := s.repo.CreateEvent(ctx, viewer.Credential, req)
	if err != nil {
		return nil, mutationError("create event", err)
	}

	s.invalidate(ctx, ScopeFor(clubID), MonthOf(start))
	return event, nil
}

// SubmitInterest forwards one submission. Repeat submissions for the same
// day are allowed; each one counts.
func (s *calendarService) SubmitInterest(ctx context.Context, viewer auth.Viewer, scope Scope, input InterestInput) error {
	if !viewer.Permissions.CanSubmitInterest {
		return apperror.NewForbidden("you do not have permission to submit interest")
	}

	input.PreferredLocation = strings.TrimSpace(input.PreferredLocation)
	if err := s.validate.Struct(input); err != nil {
		return validationError(err)
	}
	day, _ := parseDay(input.Date)

	req := interestRequest{Date: formatDay(day), PreferredLocation: input.PreferredLocation}
	clubID := strings.TrimSpace(input.ClubID)
	if clubID == "" {
		clubID = scope.ClubID()
	}
	if clubID != "" && clubID != NoClubPreference {
		req.ClubID = &clubID
	}

	if err := s.repo.SubmitInterest(ctx, viewer.Credential, req); err != nil {
		return mutationError("submit interest", err)
	}

	s.invalidate(ctx, scope, MonthOf(day))
	if req.ClubID != nil {
		s.invalidate(ctx, ScopeFor(*req.ClubID), MonthOf(day))
	}
	return nil
}

// invalidate drops the month for scope and, since every club feeds it, for
// the unified view.
func (s *calendarService) invalidate(ctx context.Context, scope Scope, month Month) {
	s.cache.Invalidate(ctx, scope, month)
	if !scope.IsUnified() {
		s.cache.Invalidate(ctx, UnifiedScope, month)
	}
}

// mutationError maps an upstream failure to an AppError. Rejections keep
// the platform's own message so the modal can show it.
func mutationError(op string, err error) error {
	se, ok := upstream.AsStatusError(err)
	if !ok || se.Status >= http.StatusInternalServerError {
		return apperror.NewUpstream(fmt.Errorf("%s: %w", op, err))
	}

	switch se.Status {
	case http.StatusUnauthorized:
		return apperror.NewUnauthorized("Your session has expired. Please sign in again.")
	case http.StatusForbidden:
		if se.Message != "" {
			return apperror.NewForbidden(se.Message)
		}
		return apperror.NewForbidden("You do not have permission to do that.")
	}
	if se.Message != "" {
		return apperror.NewValidation(se.Message)
	}
	return apperror.NewValidation("The request could not be saved. Please check the form and try again.")
}

// fieldLabels names form fields in validation messages.
var fieldLabels = map[string]string{
	"Title":             "Title",
	"EventType":         "Event type",
	"FixtureType":       "Fixture type",
	"StartDate":         "Start date",
	"EndDate":           "End date",
	"StartTime":         "Start time",
	"EndTime":           "End time",
	"Location":          "Location",
	"Description":       "Description",
	"Notes":             "Notes",
	"ClubID":            "Club",
	"Date":              "Date",
	"PreferredLocation": "Preferred location",
}

// validationError turns the first validator failure into a readable 422.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.NewValidation("The form is invalid.")
	}

	fe := verrs[0]
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return apperror.NewValidation(label + " is required.")
	case "max":
		return apperror.NewValidation(fmt.Sprintf("%s must be at most %s characters.", label, fe.Param()))
	case "day":
		return apperror.NewValidation(label + " must be a date (YYYY-MM-DD).")
	case "clock":
		return apperror.NewValidation(label + " must be a time (HH:MM).")
	case "oneof":
		return apperror.NewValidation(label + " is not a recognised option.")
	}
	return apperror.NewValidation(label + " is invalid.")
}
