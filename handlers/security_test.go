package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityAlertsHandler(t *testing.T) {
	store := setupTestStore(t)
	prev := services.Monitor
	services.Monitor = services.NewSecurityMonitor(nil)
	t.Cleanup(func() { services.Monitor = prev })

	for i := 0; i < 5; i++ {
		services.Monitor.TrackFailedLogin("203.0.113.9")
	}

	t.Run("office session lists alerts", func(t *testing.T) {
		e := newTestServer(officeConfig(t, "rahasia-kantor"), store)
		token, _, err := services.NewSessionSigner(testSecret, time.Hour).Issue()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/security/alerts", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
		rec := serve(e, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Alerts []services.SecurityAlert `json:"alerts"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Alerts, 1)
		assert.Equal(t, "203.0.113.9", body.Alerts[0].IP)
		assert.Equal(t, "CRITICAL", body.Alerts[0].Level)
	})

	t.Run("requires a session", func(t *testing.T) {
		e := newTestServer(officeConfig(t, "rahasia-kantor"), store)
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/security/alerts", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("hidden without office password", func(t *testing.T) {
		e := newTestServer(testConfig(), store)
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/security/alerts", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
