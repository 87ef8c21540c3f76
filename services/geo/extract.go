// Package geo handles the parcel boundaries uploaded at stage 4 and shown on
// the map: GeoJSON extraction, viewport bounds, TM-3 reprojection and area.
package geo

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SRIDs accepted for uploads
const (
	SRIDWGS84 = 4326
	SRIDTM3   = 23835
)

var (
	// ErrInvalidJSON is returned when the upload is not parseable JSON
	ErrInvalidJSON = errors.New("File bukan JSON/GeoJSON valid")
	// ErrUnsupportedShape is returned for anything other than a Polygon or
	// MultiPolygon wrapped in a Feature, FeatureCollection or bare geometry
	ErrUnsupportedShape = errors.New("GeoJSON harus berisi Feature/FeatureCollection dengan geometry Polygon/MultiPolygon")
)

// envelope is the subset of a GeoJSON object needed to find its geometry
type envelope struct {
	Type     string            `json:"type"`
	Geometry json.RawMessage   `json:"geometry"`
	Features []json.RawMessage `json:"features"`
}

// ExtractGeometry pulls the single polygonal geometry out of an uploaded
// GeoJSON document and returns it together with its GeoJSON encoding.
// A FeatureCollection contributes only its first feature.
func ExtractGeometry(raw []byte) (orb.Geometry, []byte, error) {
	var doc envelope
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, ErrInvalidJSON
	}

	var geomJSON []byte
	switch doc.Type {
	case "Feature":
		geomJSON = doc.Geometry
	case "FeatureCollection":
		if len(doc.Features) == 0 {
			return nil, nil, ErrUnsupportedShape
		}
		var first envelope
		if err := json.Unmarshal(doc.Features[0], &first); err != nil || first.Type != "Feature" {
			return nil, nil, ErrUnsupportedShape
		}
		geomJSON = first.Geometry
	case "Polygon", "MultiPolygon":
		geomJSON = raw
	default:
		return nil, nil, ErrUnsupportedShape
	}

	if isNullJSON(geomJSON) {
		return nil, nil, ErrUnsupportedShape
	}

	g, err := geojson.UnmarshalGeometry(geomJSON)
	if err != nil {
		return nil, nil, ErrUnsupportedShape
	}

	geometry := g.Geometry()
	switch geometry.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return nil, nil, ErrUnsupportedShape
	}
	if len(OuterRings(geometry)) == 0 {
		return nil, nil, ErrUnsupportedShape
	}

	encoded, err := json.Marshal(geojson.NewGeometry(geometry))
	if err != nil {
		return nil, nil, ErrUnsupportedShape
	}
	return geometry, encoded, nil
}

// ParseStored decodes a geometry column (GeoJSON in EPSG:4326). Only
// polygonal geometries are returned; anything else reports false.
func ParseStored(raw []byte) (orb.Geometry, bool) {
	if isNullJSON(raw) {
		return nil, false
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, false
	}
	switch geometry := g.Geometry().(type) {
	case orb.Polygon, orb.MultiPolygon:
		return geometry, true
	}
	return nil, false
}

// ParseSRID maps the form selector to an SRID: "23835" is TM-3 zone 49.1,
// anything else is treated as WGS84 lon/lat.
func ParseSRID(value string) int {
	if strings.TrimSpace(value) == "23835" {
		return SRIDTM3
	}
	return SRIDWGS84
}

// OuterRings returns the exterior ring of a Polygon or of every part of a
// MultiPolygon. Holes are skipped.
func OuterRings(g orb.Geometry) []orb.Ring {
	var rings []orb.Ring
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) > 0 && len(v[0]) > 0 {
			rings = append(rings, v[0])
		}
	case orb.MultiPolygon:
		for _, poly := range v {
			if len(poly) > 0 && len(poly[0]) > 0 {
				rings = append(rings, poly[0])
			}
		}
	}
	return rings
}

func isNullJSON(raw []byte) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}
