package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"kjsb_flow_app_go/models"
	"kjsb_flow_app_go/services/backend"
	"kjsb_flow_app_go/services/geo"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// MapPayload is the FeatureCollection served to the map page with the
// bounds to frame. Bounds is null when no feature has a geometry.
type MapPayload struct {
	Type     string             `json:"type"`
	Features []*geojson.Feature `json:"features"`
	Bounds   *[2][2]float64     `json:"bounds"`
	Fit      geo.FitOptions     `json:"fit"`
}

// BuildMapPayload converts map rows into a FeatureCollection. Rows without
// a usable geometry are left out.
func BuildMapPayload(features []models.MapFeature) *MapPayload {
	payload := &MapPayload{
		Type:     "FeatureCollection",
		Features: make([]*geojson.Feature, 0, len(features)),
		Fit:      geo.FeatureSetFit,
	}
	for _, f := range features {
		g, ok := geo.ParseStored(f.Geom)
		if !ok {
			continue
		}
		feature := geojson.NewFeature(g)
		feature.ID = f.ID
		feature.Properties = geojson.Properties{
			"id":           f.ID,
			"kode_kjsb":    f.Code(),
			"nama_pemohon": f.ApplicantName(),
		}
		payload.Features = append(payload.Features, feature)
	}
	if b, ok := geo.FeatureBounds(features); ok {
		lb := geo.LeafletBounds(b)
		payload.Bounds = &lb
	}
	return payload
}

// MapFeaturesJSON returns the encoded payload for an applicant-name filter,
// going through the feature cache.
func MapFeaturesJSON(ctx context.Context, store backend.Store, nameFilter string) ([]byte, error) {
	nameFilter = strings.TrimSpace(nameFilter)
	if cached, ok := Cache.Get(ctx, nameFilter); ok {
		return cached, nil
	}

	features, err := store.ListMapFeatures(ctx, nameFilter)
	if err != nil {
		zap.L().Error("list map features failed", zap.String("nama", nameFilter), zap.Error(err))
		return nil, fmt.Errorf("failed to list map features: %w", err)
	}

	encoded, err := json.Marshal(BuildMapPayload(features))
	if err != nil {
		return nil, fmt.Errorf("failed to encode map features: %w", err)
	}
	Cache.Set(ctx, nameFilter, encoded)
	return encoded, nil
}

// ZoomBounds returns the Leaflet bounds of one case, or false when the code
// is unknown or has no geometry. onDone runs once when bounds were found.
func ZoomBounds(ctx context.Context, store backend.Store, kode string, onDone func()) (*[2][2]float64, bool, error) {
	kode = strings.TrimSpace(kode)
	if kode == "" {
		return nil, false, nil
	}
	features, err := store.ListMapFeatures(ctx, "")
	if err != nil {
		return nil, false, fmt.Errorf("failed to list map features: %w", err)
	}
	b, ok := geo.ZoomToCode(features, kode, onDone)
	if !ok {
		return nil, false, nil
	}
	lb := geo.LeafletBounds(b)
	return &lb, true, nil
}

// CaseFeature renders the stored geometry of a case as a GeoJSON Feature
func CaseFeature(c *models.Case) (*geojson.Feature, bool) {
	g, ok := geo.ParseStored(c.Geom)
	if !ok {
		return nil, false
	}
	feature := geojson.NewFeature(g)
	feature.ID = c.ID
	feature.Properties = geojson.Properties{
		"id":                   c.ID,
		"kode_kjsb":            c.Code(),
		"nama_pemohon":         c.ApplicantName(),
		"luas_hitung_otomatis": c.LuasHitungOtomatis,
	}
	return feature, true
}
