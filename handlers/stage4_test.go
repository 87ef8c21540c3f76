package handlers

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"kjsb_flow_app_go/services/backend"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage4FileCheckedBeforeBackend(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	store := backend.NewPostgREST(srv.URL, "anon", time.Second, nil)
	e := newTestServer(testConfig(), store)

	tests := []struct {
		name     string
		fileName string
		content  string
		msg      string
	}{
		{"text file", "batas.txt", "bukan json", "File harus berekstensi .geojson atau .json."},
		{"invalid json", "batas.geojson", "bukan json", "File bukan JSON/GeoJSON valid"},
		{"point", "titik.geojson", `{"type":"Point","coordinates":[106.8,-6.2]}`,
			"GeoJSON harus berisi Feature/FeatureCollection dengan geometry Polygon/MultiPolygon"},
		{"missing file", "", "", "Pilih file .geojson terlebih dahulu."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls.Store(0)
			fileField := "geojson"
			if tt.fileName == "" {
				fileField = ""
			}
			req := multipartRequest(t, "/tahap/4", map[string]string{"kode_kjsb": "BKS-2024-0001", "no_gu": "GU-9"},
				fileField, tt.fileName, []byte(tt.content))
			// own upload rate limit bucket
			req.Header.Set(echo.HeaderXRealIP, "198.51.100.4")
			rec := serve(e, htmx(req))

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.msg)
			assert.Contains(t, rec.Body.String(), `name="kode_kjsb" value="BKS-2024-0001"`)
			assert.Equal(t, int32(0), calls.Load(), "backend requests before rejection")
		})
	}
}
