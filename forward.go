package geocart

import "math"

// GeodeticToCartesian converts a geodetic point to Cartesian coordinates.
// The conversion is exact closed form and well-defined for all latitudes in
// [-90,90].
func (e *Ellipsoid) GeodeticToCartesian(g Geodetic) Cartesian {
	lat := g.Lat * deg2rad
	lon := g.Lon * deg2rad

	sinLat := math.Sin(lat)
	// Prime-vertical radius of curvature.
	n := e.a / math.Sqrt(1-e.e2*sinLat*sinLat)

	return Cartesian{
		X: (n + g.Height) * math.Cos(lat) * math.Cos(lon),
		Y: (n + g.Height) * math.Cos(lat) * math.Sin(lon),
		Z: ((1-e.e2)*n + g.Height) * sinLat,
	}
}
