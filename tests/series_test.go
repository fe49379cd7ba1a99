package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appointmentHttp "github.com/appventus/appointment-backend/internal/appointment/http"
	"github.com/appventus/appointment-backend/internal/pkg/response"
	seriesHttp "github.com/appventus/appointment-backend/internal/series/http"
)

func weeklySeriesPayload(start time.Time, count int) seriesHttp.CreateSeriesBody {
	return seriesHttp.CreateSeriesBody{
		Title:           "Weekly Standup",
		StartTime:       start,
		DurationMinutes: 60,
		Rule: seriesHttp.RuleBody{
			Interval:      1,
			Unit:          "week",
			Weekdays:      []int{int(start.Weekday())},
			EndMode:       "after_count",
			EndAfterCount: count,
		},
	}
}

func TestSeriesLifecycle(t *testing.T) {
	clearTables()

	alice := createTestUser(t, "alice@series.com", "pass", false)
	bob := createTestUser(t, "bob@series.com", "pass", false)

	aliceToken := generateToken(alice.ID, alice.Email)
	bobToken := generateToken(bob.ID, bob.Email)

	// A Tuesday morning, far in the future.
	start := time.Date(2027, 4, 6, 10, 0, 0, 0, time.UTC)

	var seriesID string

	t.Run("Preview Series", func(t *testing.T) {
		w := executeRequest("POST", "/v1/series/preview", weeklySeriesPayload(start, 5), aliceToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp seriesHttp.PreviewResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Occurrences, 5)
		assert.Nil(t, resp.Conflict)

		// Weekly cadence: each occurrence exactly 7 days apart.
		for i := 1; i < len(resp.Occurrences); i++ {
			assert.Equal(t, 7*24*time.Hour, resp.Occurrences[i].Sub(resp.Occurrences[i-1]))
		}
	})

	t.Run("Preview Reports First Conflict", func(t *testing.T) {
		// Block the slot of the third occurrence (start + 2 weeks).
		blocker := appointmentHttp.CreateAppointmentBody{
			Title:     "Blocker",
			StartTime: start.AddDate(0, 0, 14),
			EndTime:   start.AddDate(0, 0, 14).Add(time.Hour),
		}
		wBlock := executeRequest("POST", "/v1/appointments", blocker, aliceToken)
		require.Equal(t, http.StatusCreated, wBlock.Code)

		w := executeRequest("POST", "/v1/series/preview", weeklySeriesPayload(start, 5), aliceToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp seriesHttp.PreviewResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Conflict)
		assert.Equal(t, 3, resp.Conflict.Seq, "Third occurrence should collide")
		assert.Equal(t, "Blocker", resp.Conflict.BookingTitle)
	})

	t.Run("Create Series Rejected on Conflict", func(t *testing.T) {
		w := executeRequest("POST", "/v1/series", weeklySeriesPayload(start, 5), aliceToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Create Series Forced", func(t *testing.T) {
		payload := weeklySeriesPayload(start, 5)
		payload.Force = true
		w := executeRequest("POST", "/v1/series", payload, aliceToken)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp seriesHttp.SeriesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.InstanceCount)
		assert.Equal(t, alice.ID, resp.UserID)
		seriesID = resp.ID

		// Every instance should be materialized as an appointment.
		wList := executeRequest("GET", "/v1/appointments?series_id="+seriesID, nil, aliceToken)
		require.Equal(t, http.StatusOK, wList.Code)

		var list response.PageResponse[appointmentHttp.AppointmentResponse]
		require.NoError(t, json.Unmarshal(wList.Body.Bytes(), &list))
		assert.Equal(t, 5, list.Total)
	})

	t.Run("Create Series: Invalid Rule", func(t *testing.T) {
		payload := weeklySeriesPayload(start, 5)
		payload.Rule.EndAfterCount = 0 // after_count without a count
		w := executeRequest("POST", "/v1/series", payload, aliceToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get Series: Stranger Forbidden", func(t *testing.T) {
		w := executeRequest("GET", "/v1/series/"+seriesID, nil, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Replace Series In Place", func(t *testing.T) {
		// Same weekday, shorter run. The old instances of this series must
		// not count as collisions against the replacement.
		payload := weeklySeriesPayload(start, 3)
		payload.Title = "Weekly Standup v2"
		payload.Force = true // the standalone blocker still occupies week 3

		w := executeRequest("PUT", "/v1/series/"+seriesID, payload, aliceToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp seriesHttp.SeriesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.InstanceCount)

		// Old instances are soft deleted, new ones take their place.
		wList := executeRequest("GET", "/v1/appointments?series_id="+resp.ID, nil, aliceToken)
		require.Equal(t, http.StatusOK, wList.Code)

		var list response.PageResponse[appointmentHttp.AppointmentResponse]
		require.NoError(t, json.Unmarshal(wList.Body.Bytes(), &list))
		assert.Equal(t, 3, list.Total)

		seriesID = resp.ID
	})

	t.Run("Delete Series Removes Instances", func(t *testing.T) {
		w := executeRequest("DELETE", "/v1/series/"+seriesID, nil, aliceToken)
		require.Equal(t, http.StatusNoContent, w.Code)

		wList := executeRequest("GET", "/v1/appointments?series_id="+seriesID, nil, aliceToken)
		require.Equal(t, http.StatusOK, wList.Code)

		var list response.PageResponse[appointmentHttp.AppointmentResponse]
		require.NoError(t, json.Unmarshal(wList.Body.Bytes(), &list))
		assert.Equal(t, 0, list.Total)
	})
}

func TestSeriesMonthlyClamp(t *testing.T) {
	clearTables()

	alice := createTestUser(t, "alice@monthly.com", "pass", false)
	aliceToken := generateToken(alice.ID, alice.Email)

	// Start on Jan 31; a month-day rule above the cap snaps to day 27.
	start := time.Date(2027, 1, 31, 14, 0, 0, 0, time.UTC)

	payload := seriesHttp.CreateSeriesBody{
		Title:           "Monthly Review",
		StartTime:       start,
		DurationMinutes: 30,
		Rule: seriesHttp.RuleBody{
			Interval:      1,
			Unit:          "month",
			MonthDay:      27,
			EndMode:       "after_count",
			EndAfterCount: 4,
		},
	}

	w := executeRequest("POST", "/v1/series/preview", payload, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	var resp seriesHttp.PreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Occurrences, 4)
	for _, occ := range resp.Occurrences {
		assert.Equal(t, 27, occ.Day(), "Every occurrence should land on day 27")
		assert.Equal(t, 14, occ.Hour(), "Clock time must be preserved")
	}
}
