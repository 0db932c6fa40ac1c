package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/clubcal/internal/upstream"
)

// newTestRepo serves handler as the platform API under /api/.
func newTestRepo(t *testing.T, handler http.HandlerFunc) CalendarRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := upstream.New(srv.URL+"/api", 5*time.Second)
	require.NoError(t, err)
	return NewCalendarRepository(client)
}

func TestRepository_ListEvents(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events", r.URL.Path)
		assert.Equal(t, "club-1", r.URL.Query().Get("clubId"))
		assert.Equal(t, "2025-03-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2025-03-31", r.URL.Query().Get("endDate"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"id":"e1","title":"League","eventType":"FIXTURE","eventSource":"FIXTURE","fixtureType":"COMPETITIVE","startDate":"2025-03-14T00:00:00.000Z"},
			{"id":"","title":"No id","eventType":"SOCIAL","startDate":"2025-03-15"}
		]`))
	})

	events, err := repo.ListEvents(context.Background(), "tok", "club-1", day("2025-03-01"), day("2025-03-31"))

	require.NoError(t, err)
	require.Len(t, events, 1, "invalid records are dropped")
	assert.Equal(t, day("2025-03-14"), events[0].Start)
}

func TestRepository_ListInterestAllClubs(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/interest", r.URL.Path)
		assert.False(t, r.URL.Query().Has("clubId"))
		_, _ = w.Write([]byte(`[{"date":"2025-03-20","totalSubmissions":2,"uniqueUsers":1,"clubCount":1}]`))
	})

	interests, err := repo.ListInterest(context.Background(), "", "", day("2025-03-01"), day("2025-03-31"))

	require.NoError(t, err)
	assert.Equal(t, []InterestAggregate{{Date: day("2025-03-20"), TotalSubmissions: 2, UniqueUsers: 1, ClubCount: 1}}, interests)
}

func TestRepository_ListHolidaysError(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "IE", r.URL.Query().Get("country"))
		assert.Equal(t, "2025", r.URL.Query().Get("year"))
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := repo.ListHolidays(context.Background(), "", "IE", 2025)

	se, ok := upstream.AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
}

func TestRepository_GetUnifiedDegradesMembers(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/unified", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"events":[{"id":"u1","title":"Blitz","eventType":"TOURNAMENT","startDate":"2025-03-08"}],
			"interests":"not a list",
			"priorityWeekends":[{"id":"p1","date":"2025-03-29","message":"Final"}]
		}`))
	})

	payload, err := repo.GetUnified(context.Background(), "", day("2025-03-01"), day("2025-03-31"))

	require.NoError(t, err)
	assert.Len(t, payload.Events, 1)
	assert.Empty(t, payload.Interests)
	assert.Empty(t, payload.Holidays)
	require.Len(t, payload.PriorityWeekends, 1)
	assert.Equal(t, "Final", payload.PriorityWeekends[0].Message)
}

func TestRepository_CreateEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrapped", `{"event":{"id":"e9","title":"League","eventType":"FIXTURE","eventSource":"FIXTURE","startDate":"2025-03-14"},"conflictWarning":"Clashes with a fixture"}`},
		{"bare", `{"id":"e9","title":"League","eventType":"FIXTURE","eventSource":"FIXTURE","startDate":"2025-03-14","conflictWarning":"Clashes with a fixture"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				var req createEventRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "club-1", req.ClubID)
				assert.Equal(t, "FIXTURE", req.EventSource)
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(tt.body))
			})

			event, err := repo.CreateEvent(context.Background(), "tok", createEventRequest{
				ClubID: "club-1", Title: "League", EventType: "FIXTURE", EventSource: "FIXTURE", StartDate: "2025-03-14",
			})

			require.NoError(t, err)
			assert.Equal(t, "e9", event.ID)
			assert.Equal(t, "Clashes with a fixture", event.ConflictWarning)
			assert.Equal(t, day("2025-03-14"), event.Start)
		})
	}
}

func TestRepository_SubmitInterestNullClub(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "clubId")
		assert.Nil(t, body["clubId"])
		assert.Equal(t, "2025-03-20", body["date"])
		w.WriteHeader(http.StatusNoContent)
	})

	err := repo.SubmitInterest(context.Background(), "tok", interestRequest{Date: "2025-03-20"})

	assert.NoError(t, err)
}
