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
)

func TestAppointmentCRUDAndCollisions(t *testing.T) {
	clearTables()

	// ==== Setup Users & Tokens ====
	admin := createTestUser(t, "admin@appt.com", "pass", true)
	alice := createTestUser(t, "alice@appt.com", "pass", false)
	bob := createTestUser(t, "bob@appt.com", "pass", false)

	adminToken := generateToken(admin.ID, admin.Email)
	aliceToken := generateToken(alice.ID, alice.Email)
	bobToken := generateToken(bob.ID, bob.Email)

	// Fixed slot far in the future so runs never collide with "now" logic
	baseStart := time.Date(2027, 3, 10, 9, 0, 0, 0, time.UTC)
	baseEnd := baseStart.Add(time.Hour)

	var appointmentID string

	t.Run("Create Appointment", func(t *testing.T) {
		payload := appointmentHttp.CreateAppointmentBody{
			Title:     "Dentist",
			StartTime: baseStart,
			EndTime:   baseEnd,
		}
		w := executeRequest("POST", "/v1/appointments", payload, aliceToken)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp appointmentHttp.AppointmentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, alice.ID, resp.UserID)
		assert.Equal(t, "Dentist", resp.Title)
		appointmentID = resp.ID
	})

	t.Run("Create Appointment: Invalid Time Range", func(t *testing.T) {
		payload := appointmentHttp.CreateAppointmentBody{
			Title:     "Backwards",
			StartTime: baseEnd,
			EndTime:   baseStart,
		}
		w := executeRequest("POST", "/v1/appointments", payload, aliceToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Create Appointment: Overlapping Slot Rejected", func(t *testing.T) {
		payload := appointmentHttp.CreateAppointmentBody{
			Title:     "Overlap",
			StartTime: baseStart.Add(30 * time.Minute),
			EndTime:   baseEnd.Add(30 * time.Minute),
		}
		w := executeRequest("POST", "/v1/appointments", payload, aliceToken)
		require.Equal(t, http.StatusConflict, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		conflict, ok := resp["conflict"].(map[string]any)
		require.True(t, ok, "409 body should carry the conflicting booking")
		assert.Equal(t, appointmentID, conflict["booking_id"])
	})

	t.Run("Create Appointment: Back-to-Back Allowed", func(t *testing.T) {
		payload := appointmentHttp.CreateAppointmentBody{
			Title:     "Right After",
			StartTime: baseEnd,
			EndTime:   baseEnd.Add(time.Hour),
		}
		w := executeRequest("POST", "/v1/appointments", payload, aliceToken)
		assert.Equal(t, http.StatusCreated, w.Code, "Touching intervals must not collide")
	})

	t.Run("Create Appointment: Other User Same Slot Allowed", func(t *testing.T) {
		payload := appointmentHttp.CreateAppointmentBody{
			Title:     "Bob's Own Slot",
			StartTime: baseStart,
			EndTime:   baseEnd,
		}
		w := executeRequest("POST", "/v1/appointments", payload, bobToken)
		assert.Equal(t, http.StatusCreated, w.Code, "Collisions are scoped per user")
	})

	t.Run("Create Appointment: Force Overrides Collision", func(t *testing.T) {
		payload := appointmentHttp.CreateAppointmentBody{
			Title:     "Forced Overlap",
			StartTime: baseStart,
			EndTime:   baseEnd,
			Force:     true,
		}
		w := executeRequest("POST", "/v1/appointments", payload, aliceToken)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Get Appointment: Stranger Forbidden", func(t *testing.T) {
		w := executeRequest("GET", "/v1/appointments/"+appointmentID, nil, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Get Appointment: Admin Allowed", func(t *testing.T) {
		w := executeRequest("GET", "/v1/appointments/"+appointmentID, nil, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Update Appointment: Reschedule Within Own Slot", func(t *testing.T) {
		// Shifting by 15 minutes still overlaps the original slot, but an
		// appointment must never collide with itself.
		newStart := baseStart.Add(15 * time.Minute)
		newEnd := baseEnd.Add(15 * time.Minute)
		payload := appointmentHttp.UpdateAppointmentBody{
			StartTime: &newStart,
			EndTime:   &newEnd,
			Force:     true, // the forced duplicate from above occupies the slot
		}
		w := executeRequest("PATCH", "/v1/appointments/"+appointmentID, payload, aliceToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Update Appointment: Stranger Forbidden", func(t *testing.T) {
		title := "Hijacked"
		payload := appointmentHttp.UpdateAppointmentBody{Title: &title}
		w := executeRequest("PATCH", "/v1/appointments/"+appointmentID, payload, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("List Appointments: Own Only", func(t *testing.T) {
		w := executeRequest("GET", "/v1/appointments", nil, bobToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp response.PageResponse[appointmentHttp.AppointmentResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		for _, item := range resp.Items {
			assert.Equal(t, bob.ID, item.UserID)
		}
	})

	t.Run("Delete Appointment Frees Slot", func(t *testing.T) {
		// Book an isolated slot, delete it, then rebook without force.
		slotStart := baseStart.AddDate(0, 0, 1)
		slotEnd := slotStart.Add(time.Hour)

		payload := appointmentHttp.CreateAppointmentBody{
			Title:     "Short Lived",
			StartTime: slotStart,
			EndTime:   slotEnd,
		}
		wCreate := executeRequest("POST", "/v1/appointments", payload, aliceToken)
		require.Equal(t, http.StatusCreated, wCreate.Code)

		var created appointmentHttp.AppointmentResponse
		require.NoError(t, json.Unmarshal(wCreate.Body.Bytes(), &created))

		wDelete := executeRequest("DELETE", "/v1/appointments/"+created.ID, nil, aliceToken)
		require.Equal(t, http.StatusNoContent, wDelete.Code)

		payload.Title = "Into Freed Slot"
		wRebook := executeRequest("POST", "/v1/appointments", payload, aliceToken)
		assert.Equal(t, http.StatusCreated, wRebook.Code, "Deleted appointments must not block the slot")
	})
}
