package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func officeConfig(t *testing.T, password string) *config.Config {
	hash, err := services.HashPassword(password)
	require.NoError(t, err)
	cfg := testConfig()
	cfg.OfficePasswordHash = hash
	cfg.SessionSecret = testSecret
	return cfg
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestLoginHandler(t *testing.T) {
	t.Run("auth disabled redirects home", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/login", nil, nil)
		require.NoError(t, LoginHandler(c))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
	})

	t.Run("renders the form", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/login", nil, nil)
		c.Set("config", officeConfig(t, "rahasia-kantor"))
		require.NoError(t, LoginHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `name="password"`)
	})
}

func TestOfficeLoginFlow(t *testing.T) {
	store := setupTestStore(t)
	cfg := officeConfig(t, "rahasia-kantor")
	e := newTestServer(cfg, store)

	t.Run("pages require a session", func(t *testing.T) {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/tahap/1", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("health stays public", func(t *testing.T) {
		rec := serve(e, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := serve(e, formRequest(http.MethodPost, "/login", url.Values{"password": {"salah"}}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Kata sandi salah.")
		assert.Nil(t, sessionCookie(rec))
	})

	var cookie *http.Cookie
	t.Run("right password sets the cookie", func(t *testing.T) {
		rec := serve(e, formRequest(http.MethodPost, "/login", url.Values{"password": {"rahasia-kantor"}}))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		cookie = sessionCookie(rec)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("session opens the pages", func(t *testing.T) {
		require.NotNil(t, cookie)
		req := httptest.NewRequest(http.MethodGet, "/tahap/1", nil)
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
		rec := serve(e, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `action="/logout"`)
	})

	t.Run("htmx login answers with HX-Redirect", func(t *testing.T) {
		rec := serve(e, htmx(formRequest(http.MethodPost, "/login", url.Values{"password": {"rahasia-kantor"}})))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("HX-Redirect"))
	})
}

func TestLogoutHandler(t *testing.T) {
	_, c, rec := setupEcho(http.MethodPost, "/logout", nil, nil)
	require.NoError(t, LogoutHandler(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.MaxAge < 0)
}
