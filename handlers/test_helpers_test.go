package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"kjsb_flow_app_go/config"
	"kjsb_flow_app_go/middleware"
	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services"
	"kjsb_flow_app_go/services/backend"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPolygon = `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[106.80,-6.20],[106.81,-6.20],[106.81,-6.21],[106.80,-6.21],[106.80,-6.20]]]}}`

const testSecret = "handler-test-secret-handler-test-secret"

func setupTestStore(t *testing.T) *backend.Local {
	// Use unique shared memory name to isolate tests
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store := backend.NewLocal(testDB, "BKS", zap.NewNop())
	require.NoError(t, store.Migrate())

	prevCache, prevStorage := services.Cache, services.Storage
	services.Cache = services.NoopCache{}
	services.Storage = nil
	t.Cleanup(func() {
		services.Cache, services.Storage = prevCache, prevStorage
	})
	return store
}

func testConfig() *config.Config {
	return &config.Config{
		Environment:    "test",
		MaxUploadBytes: 1 << 20,
		EmailTestMode:  true,
	}
}

// setupEcho builds a context the way the server does for a single handler
func setupEcho(method, path string, body io.Reader, store backend.Store) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Set("config", testConfig())
	if store != nil {
		c.Set(middleware.ContextKeyStore, store)
	}
	return e, c, rec
}

// newTestServer registers every route on a fresh Echo with cfg in context
func newTestServer(cfg *config.Config, store backend.Store) *echo.Echo {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})
	RegisterRoutes(e, cfg, services.NewSessionSigner(testSecret, time.Hour), store)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

// multipartRequest posts fields plus one file part
func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, fileName string, content []byte) *http.Request {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func seedCase(t *testing.T, store backend.Store, name string, fields map[string]any) *models.Case {
	ctx := context.Background()
	ref, err := store.CreateCase(ctx, backend.Stage1Create{
		NewApplicant: &models.Applicant{NamaPemohon: name},
		Fields:       fields,
	})
	require.NoError(t, err)
	c, err := store.GetCase(ctx, ref.KodeKJSB)
	require.NoError(t, err)
	return c
}

// seedMappedCase creates a case and stores testPolygon as its boundary
func seedMappedCase(t *testing.T, store backend.Store, name string) *models.Case {
	c := seedCase(t, store, name, nil)
	ctx := context.Background()
	require.NoError(t, store.UpdateStage4WithGeometry(ctx, backend.Stage4Call{
		KodeKJSB:  c.Code(),
		GeoJSON:   testPolygon,
		InputSRID: 4326,
		Fields:    map[string]any{},
	}))
	got, err := store.GetCase(ctx, c.Code())
	require.NoError(t, err)
	return got
}
