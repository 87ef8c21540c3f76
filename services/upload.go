package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"kjsb_flow_app_go/services/i18n"
)

// GeoJSONExtensions are the file extensions accepted by the stage 4 upload
var GeoJSONExtensions = []string{".geojson", ".json"}

// ReadGeoJSONUpload checks and reads the stage 4 file part. A nil header
// yields an upload without data, which UploadStage4 reports as missing.
// At most maxBytes+1 bytes are read so an oversized body is still detected
// when the part size is unknown.
func ReadGeoJSONUpload(ctx context.Context, fileHeader *multipart.FileHeader, srid string, maxBytes int64) (Stage4Upload, error) {
	upload := Stage4Upload{SRID: srid}
	if fileHeader == nil {
		return upload, nil
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	allowed := false
	for _, e := range GeoJSONExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return upload, NewValidationError("geojson", i18n.T(ctx, "upload.invalid_extension"))
	}
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return upload, NewValidationError("geojson", i18n.T(ctx, "upload.too_large", map[string]interface{}{"max": maxBytes}))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return upload, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if maxBytes > 0 {
		r = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return upload, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	upload.FileName = fileHeader.Filename
	upload.Data = data
	return upload, nil
}
