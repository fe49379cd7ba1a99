package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	statusHttp "github.com/appventus/appointment-backend/internal/status/http"
)

func TestStatusCatalog(t *testing.T) {
	clearTables()

	admin := createTestUser(t, "admin@status.com", "pass", true)
	normal := createTestUser(t, "normal@status.com", "pass", false)

	adminToken := generateToken(admin.ID, admin.Email)
	normalToken := generateToken(normal.ID, normal.Email)

	var statusID string

	t.Run("Admin Create Status", func(t *testing.T) {
		payload := statusHttp.CreateStatusBody{
			Name:      "Confirmed",
			Color:     "#00AA00",
			SortOrder: 1,
		}
		w := executeRequest("POST", "/v1/statuses", payload, adminToken)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp statusHttp.StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Confirmed", resp.Name)
		statusID = resp.ID
	})

	t.Run("Normal User Create Status Forbidden", func(t *testing.T) {
		payload := statusHttp.CreateStatusBody{Name: "Sneaky"}
		w := executeRequest("POST", "/v1/statuses", payload, normalToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Anyone Authenticated Can List", func(t *testing.T) {
		w := executeRequest("GET", "/v1/statuses", nil, normalToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotNil(t, resp["items"])
	})

	t.Run("Admin Update Status", func(t *testing.T) {
		name := "Cancelled"
		payload := statusHttp.UpdateStatusBody{Name: &name}
		w := executeRequest("PATCH", "/v1/statuses/"+statusID, payload, adminToken)
		require.Equal(t, http.StatusOK, w.Code)

		var resp statusHttp.StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Cancelled", resp.Name)
	})

	t.Run("Admin Delete Status", func(t *testing.T) {
		w := executeRequest("DELETE", "/v1/statuses/"+statusID, nil, adminToken)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
