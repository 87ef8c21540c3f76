package geo

import (
	"strings"

	"kjsb_flow_app_go/models"

	"github.com/paulmach/orb"
)

// FitOptions mirror the Leaflet fitBounds options used by the map page
type FitOptions struct {
	Padding int `json:"padding"`
	MaxZoom int `json:"maxZoom"`
}

var (
	// FeatureSetFit frames every visible feature
	FeatureSetFit = FitOptions{Padding: 24, MaxZoom: 18}
	// ZoomToFit frames a single case opened via ?zoomTo=
	ZoomToFit = FitOptions{Padding: 40, MaxZoom: 16}
)

// GeometryBounds returns the bounding box of the outer rings of a polygonal
// geometry, or false when it has no coordinates.
func GeometryBounds(g orb.Geometry) (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, ring := range OuterRings(g) {
		for _, p := range ring {
			if !found {
				b = orb.Bound{Min: p, Max: p}
				found = true
				continue
			}
			b = b.Extend(p)
		}
	}
	return b, found
}

// FeatureBounds accumulates the bounds of every feature with a usable
// geometry. It reports false when none contributed, in which case the
// viewport must be left untouched.
func FeatureBounds(features []models.MapFeature) (orb.Bound, bool) {
	var total orb.Bound
	found := false
	for _, f := range features {
		g, ok := ParseStored(f.Geom)
		if !ok {
			continue
		}
		b, ok := GeometryBounds(g)
		if !ok {
			continue
		}
		if !found {
			total = b
			found = true
			continue
		}
		total = total.Union(b)
	}
	return total, found
}

// ZoomToCode computes the bounds of the feature whose code equals the
// trimmed code. onDone runs exactly once when a bound was found and never
// otherwise.
func ZoomToCode(features []models.MapFeature, code string, onDone func()) (orb.Bound, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return orb.Bound{}, false
	}
	for _, f := range features {
		if f.Code() != code {
			continue
		}
		g, ok := ParseStored(f.Geom)
		if !ok {
			return orb.Bound{}, false
		}
		b, ok := GeometryBounds(g)
		if !ok {
			return orb.Bound{}, false
		}
		if onDone != nil {
			onDone()
		}
		return b, true
	}
	return orb.Bound{}, false
}

// LeafletBounds serialises a bound as [[south, west], [north, east]]
func LeafletBounds(b orb.Bound) [2][2]float64 {
	return [2][2]float64{
		{b.Min.Lat(), b.Min.Lon()},
		{b.Max.Lat(), b.Max.Lon()},
	}
}
