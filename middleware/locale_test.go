package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/services/i18n"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestLocale(t *testing.T) {
	e := echo.New()
	cfg := &config.Config{Environment: "development"}

	run := func(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		handler := Locale(cfg)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, handler(c))
		return c, rec
	}

	t.Run("PriorityQueryParam", func(t *testing.T) {
		c, rec := run(httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
		assert.Equal(t, "en", c.Get("locale"))

		found := false
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == "lang" {
				assert.Equal(t, "en", cookie.Value)
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("UnsupportedQueryParam", func(t *testing.T) {
		c, _ := run(httptest.NewRequest(http.MethodGet, "/?lang=fr", nil))
		assert.Equal(t, "id", c.Get("locale"))
	})

	t.Run("PriorityCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "lang", Value: "en"})
		req.Header.Set("Accept-Language", "id-ID")
		c, _ := run(req)
		assert.Equal(t, "en", c.Get("locale"))
	})

	t.Run("PriorityHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "fr-FR,en-US;q=0.8,id;q=0.5")
		c, _ := run(req)
		assert.Equal(t, "en", c.Get("locale"))
	})

	t.Run("DefaultLanguage", func(t *testing.T) {
		c, _ := run(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "id", c.Get("locale"))
	})

	t.Run("RequestContext", func(t *testing.T) {
		c, _ := run(httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
		assert.Equal(t, "en", i18n.GetLocale(c.Request().Context()))
	})
}

func TestSetLanguageCookie(t *testing.T) {
	e := echo.New()

	for _, tc := range []struct {
		env    string
		secure bool
	}{
		{"development", false},
		{"production", true},
	} {
		t.Run(tc.env, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			c.Set("config", &config.Config{Environment: tc.env})

			SetLanguageCookie(c, "en")

			var langCookie *http.Cookie
			for _, cookie := range rec.Result().Cookies() {
				if cookie.Name == "lang" {
					langCookie = cookie
				}
			}
			if assert.NotNil(t, langCookie) {
				assert.Equal(t, "en", langCookie.Value)
				assert.Equal(t, tc.secure, langCookie.Secure)
			}
		})
	}
}

func TestGetLocale(t *testing.T) {
	e := echo.New()
	t.Run("WithLocale", func(t *testing.T) {
		c := e.NewContext(nil, nil)
		c.Set("locale", "en")
		assert.Equal(t, "en", GetLocale(c))
	})

	t.Run("WithoutLocale", func(t *testing.T) {
		c := e.NewContext(nil, nil)
		assert.Equal(t, "id", GetLocale(c))
	})
}
