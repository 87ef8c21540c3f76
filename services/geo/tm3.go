package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// TM-3 zone 49.1 (EPSG:23835) on the WGS84 ellipsoid
const (
	tm3SemiMajor       = 6378137.0
	tm3Flattening      = 1 / 298.257223563
	tm3CentralMeridian = 109.5
	tm3ScaleFactor     = 0.9999
	tm3FalseEasting    = 200000.0
	tm3FalseNorthing   = 1500000.0
)

// InverseTM3 converts TM-3 zone 49.1 easting/northing in metres to WGS84
// longitude/latitude in degrees.
func InverseTM3(easting, northing float64) (lon, lat float64) {
	a := tm3SemiMajor
	e2 := tm3Flattening * (2 - tm3Flattening)
	ep2 := e2 / (1 - e2)
	k0 := tm3ScaleFactor

	x := easting - tm3FalseEasting
	m := (northing - tm3FalseNorthing) / k0

	mu := m / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))
	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))

	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi := math.Sin(phi1)
	cosPhi := math.Cos(phi1)
	tanPhi := math.Tan(phi1)

	c1 := ep2 * cosPhi * cosPhi
	t1 := tanPhi * tanPhi
	n1 := a / math.Sqrt(1-e2*sinPhi*sinPhi)
	r1 := a * (1 - e2) / math.Pow(1-e2*sinPhi*sinPhi, 1.5)
	d := x / (n1 * k0)

	latRad := phi1 - (n1*tanPhi/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)

	lonRad := (d - (1+2*t1+c1)*math.Pow(d, 3)/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120) / cosPhi

	return tm3CentralMeridian + lonRad*180/math.Pi, latRad * 180 / math.Pi
}

// ReprojectToWGS84 returns a copy of a polygonal geometry in EPSG:4326.
// Geometries already in 4326 are returned unchanged.
func ReprojectToWGS84(g orb.Geometry, srid int) orb.Geometry {
	if srid != SRIDTM3 {
		return g
	}
	switch v := g.(type) {
	case orb.Polygon:
		return reprojectPolygon(v)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, poly := range v {
			out[i] = reprojectPolygon(poly)
		}
		return out
	}
	return g
}

func reprojectPolygon(poly orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		r := make(orb.Ring, len(ring))
		for j, p := range ring {
			lon, lat := InverseTM3(p[0], p[1])
			r[j] = orb.Point{lon, lat}
		}
		out[i] = r
	}
	return out
}
