package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a parsed multipart header holding content
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("geojson", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/tahap/4", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["geojson"][0]
}

func TestReadGeoJSONUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("no file part", func(t *testing.T) {
		upload, err := ReadGeoJSONUpload(ctx, nil, "23835", 100)
		require.NoError(t, err)
		assert.Equal(t, "23835", upload.SRID)
		assert.Empty(t, upload.Data)
	})

	t.Run("reads a geojson file", func(t *testing.T) {
		upload, err := ReadGeoJSONUpload(ctx, fileHeader(t, "Batas.GeoJSON", []byte(testPolygon)), "4326", 1<<20)
		require.NoError(t, err)
		assert.Equal(t, "Batas.GeoJSON", upload.FileName)
		assert.Equal(t, []byte(testPolygon), upload.Data)
	})

	t.Run("wrong extension", func(t *testing.T) {
		_, err := ReadGeoJSONUpload(ctx, fileHeader(t, "batas.kml", []byte("<kml/>")), "", 0)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "geojson", ve.Field)
		assert.Equal(t, "File harus berekstensi .geojson atau .json.", ve.Message)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := ReadGeoJSONUpload(ctx, fileHeader(t, "batas.json", []byte(testPolygon)), "", 16)
		require.Error(t, err)
		assert.Equal(t, "Ukuran file melebihi batas 16 byte.", UserMessage(err))
	})
}
