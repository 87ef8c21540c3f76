package geo

import (
	"testing"

	"kjsb_flow_app_go/models"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func feature(code, geom string) models.MapFeature {
	f := models.MapFeature{ID: code, KodeKJSB: &code}
	if geom != "" {
		f.Geom = datatypes.JSON(geom)
	}
	return f
}

func TestFeatureBounds(t *testing.T) {
	t.Run("no features leaves viewport alone", func(t *testing.T) {
		_, ok := FeatureBounds(nil)
		assert.False(t, ok)
	})

	t.Run("null geometries are skipped", func(t *testing.T) {
		_, ok := FeatureBounds([]models.MapFeature{feature("A", ""), feature("B", "null")})
		assert.False(t, ok)
	})

	t.Run("contains every feature", func(t *testing.T) {
		features := []models.MapFeature{
			feature("A", `{"type":"Polygon","coordinates":[[[107.0,-6.3],[107.1,-6.3],[107.1,-6.2],[107.0,-6.3]]]}`),
			feature("B", `{"type":"MultiPolygon","coordinates":[[[[106.9,-6.4],[107.0,-6.4],[107.0,-6.35],[106.9,-6.4]]],[[[107.2,-6.1],[107.3,-6.1],[107.3,-6.0],[107.2,-6.1]]]]}`),
			feature("C", ""),
		}
		b, ok := FeatureBounds(features)
		require.True(t, ok)
		assert.Equal(t, orb.Point{106.9, -6.4}, b.Min)
		assert.Equal(t, orb.Point{107.3, -6.0}, b.Max)
	})

	t.Run("holes do not extend bounds", func(t *testing.T) {
		g := `{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,4],[0,4],[0,0]],[[1,1],[9,1],[9,9],[1,1]]]}`
		b, ok := FeatureBounds([]models.MapFeature{feature("A", g)})
		require.True(t, ok)
		assert.Equal(t, orb.Point{4, 4}, b.Max)
	})
}

func TestZoomToCode(t *testing.T) {
	features := []models.MapFeature{
		feature("BKS-2026-0001", `{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,3],[0,0]]]}`),
		feature("BKS-2026-0002", `{"type":"Polygon","coordinates":[[[10,10],[11,10],[11,11],[10,10]]]}`),
		feature("BKS-2026-0003", ""),
	}

	t.Run("matches trimmed code and calls onDone once", func(t *testing.T) {
		calls := 0
		b, ok := ZoomToCode(features, "  BKS-2026-0002 ", func() { calls++ })
		require.True(t, ok)
		assert.Equal(t, 1, calls)
		assert.Equal(t, orb.Point{10, 10}, b.Min)
		assert.Equal(t, orb.Point{11, 11}, b.Max)
	})

	t.Run("unknown code does not call onDone", func(t *testing.T) {
		calls := 0
		_, ok := ZoomToCode(features, "BKS-2026-9999", func() { calls++ })
		assert.False(t, ok)
		assert.Equal(t, 0, calls)
	})

	t.Run("case without geometry does not call onDone", func(t *testing.T) {
		calls := 0
		_, ok := ZoomToCode(features, "BKS-2026-0003", func() { calls++ })
		assert.False(t, ok)
		assert.Equal(t, 0, calls)
	})

	t.Run("empty code", func(t *testing.T) {
		_, ok := ZoomToCode(features, "   ", nil)
		assert.False(t, ok)
	})
}

func TestLeafletBounds(t *testing.T) {
	b := orb.Bound{Min: orb.Point{106.9, -6.4}, Max: orb.Point{107.3, -6.0}}
	assert.Equal(t, [2][2]float64{{-6.4, 106.9}, {-6.0, 107.3}}, LeafletBounds(b))
}
