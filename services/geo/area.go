package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Area returns the area in square metres of a geometry expressed in srid.
// Projected TM-3 input is measured in the plane; lon/lat input uses the
// spherical area.
func Area(g orb.Geometry, srid int) float64 {
	if srid == SRIDTM3 {
		return math.Abs(planar.Area(g))
	}
	return math.Abs(orbgeo.Area(g))
}
