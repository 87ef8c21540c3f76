package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareJSON = `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`

func TestExtractGeometry(t *testing.T) {
	t.Run("bare polygon", func(t *testing.T) {
		g, encoded, err := ExtractGeometry([]byte(squareJSON))
		require.NoError(t, err)
		assert.IsType(t, orb.Polygon{}, g)
		assert.Contains(t, string(encoded), `"type":"Polygon"`)
	})

	t.Run("feature", func(t *testing.T) {
		raw := `{"type":"Feature","properties":{},"geometry":` + squareJSON + `}`
		g, _, err := ExtractGeometry([]byte(raw))
		require.NoError(t, err)
		assert.IsType(t, orb.Polygon{}, g)
	})

	t.Run("feature collection uses first feature only", func(t *testing.T) {
		raw := `{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{},"geometry":{"type":"MultiPolygon","coordinates":[[[[5,5],[6,5],[6,6],[5,5]]]]}},
			{"type":"Feature","properties":{},"geometry":` + squareJSON + `}
		]}`
		g, _, err := ExtractGeometry([]byte(raw))
		require.NoError(t, err)
		mp, ok := g.(orb.MultiPolygon)
		require.True(t, ok)
		assert.Equal(t, orb.Point{5, 5}, mp[0][0][0])
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		_, _, err := ExtractGeometry([]byte("not json"))
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})

	t.Run("rejects null geometry", func(t *testing.T) {
		_, _, err := ExtractGeometry([]byte(`{"type":"Feature","properties":{},"geometry":null}`))
		assert.ErrorIs(t, err, ErrUnsupportedShape)
	})

	t.Run("rejects point", func(t *testing.T) {
		_, _, err := ExtractGeometry([]byte(`{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]}}`))
		assert.ErrorIs(t, err, ErrUnsupportedShape)
	})

	t.Run("rejects empty collection", func(t *testing.T) {
		_, _, err := ExtractGeometry([]byte(`{"type":"FeatureCollection","features":[]}`))
		assert.ErrorIs(t, err, ErrUnsupportedShape)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, _, err := ExtractGeometry([]byte(`{"type":"GeometryCollection","geometries":[]}`))
		assert.ErrorIs(t, err, ErrUnsupportedShape)
	})
}

func TestParseSRID(t *testing.T) {
	assert.Equal(t, SRIDTM3, ParseSRID("23835"))
	assert.Equal(t, SRIDTM3, ParseSRID(" 23835 "))
	assert.Equal(t, SRIDWGS84, ParseSRID("4326"))
	assert.Equal(t, SRIDWGS84, ParseSRID(""))
	assert.Equal(t, SRIDWGS84, ParseSRID("3857"))
}

func TestParseStored(t *testing.T) {
	_, ok := ParseStored([]byte("null"))
	assert.False(t, ok)

	_, ok = ParseStored(nil)
	assert.False(t, ok)

	_, ok = ParseStored([]byte(`{"type":"Point","coordinates":[1,2]}`))
	assert.False(t, ok)

	g, ok := ParseStored([]byte(squareJSON))
	assert.True(t, ok)
	assert.IsType(t, orb.Polygon{}, g)
}
