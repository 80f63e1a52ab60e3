package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/proximity-explorer/model"
)

// WGS84 reference ellipsoid, kilometres.
const (
	wgs84SemiMajorKm = 6378.137
	wgs84Flattening  = 1 / 298.257223563
)

// wgs84E2 is the first eccentricity squared, e² = f(2 - f).
var wgs84E2 = wgs84Flattening * (2 - wgs84Flattening)

// originEpsilonKm: cartesian points closer than this to Earth's centre
// have no defined latitude or longitude.
const originEpsilonKm = 1e-6

// geodeticIterations bounds the latitude refinement loop; five passes
// converge well below the round-trip tolerance for any orbital altitude.
const geodeticIterations = 5

// GeodeticToCartesian converts a geodetic point to ECEF kilometres.
// Altitude is applied along the ellipsoid normal, not a sphere normal,
// so non-zero altitudes stay free of systematic error.
func GeodeticToCartesian(g model.GeodeticPoint) (model.CartesianPoint, error) {
	if err := g.Validate(); err != nil {
		return model.CartesianPoint{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	lat := degToRad(g.LatitudeDeg)
	lon := degToRad(g.LongitudeDeg)
	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)

	// Prime-vertical radius of curvature.
	n := wgs84SemiMajorKm / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	return model.CartesianPoint{
		X: (n + g.AltitudeKm) * cosLat * math.Cos(lon),
		Y: (n + g.AltitudeKm) * cosLat * math.Sin(lon),
		Z: (n*(1-wgs84E2) + g.AltitudeKm) * sinLat,
	}, nil
}

// CartesianToGeodetic converts an ECEF point to geodetic coordinates
// using bounded successive approximation on latitude. It fails with
// ErrDegenerateInput for points within a negligible epsilon of the
// origin, and converges for every other finite input.
func CartesianToGeodetic(c model.CartesianPoint) (model.GeodeticPoint, error) {
	if err := c.Validate(); err != nil {
		return model.GeodeticPoint{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	r := Vec3{X: c.X, Y: c.Y, Z: c.Z}.Norm()
	if r < originEpsilonKm {
		return model.GeodeticPoint{}, fmt.Errorf("%w: |r| = %v km", ErrDegenerateInput, r)
	}

	p := math.Hypot(c.X, c.Y)

	// On the polar axis the longitude is arbitrary and the iteration
	// below would divide by cos(±90°); resolve directly.
	if p < originEpsilonKm {
		semiMinor := wgs84SemiMajorKm * (1 - wgs84Flattening)
		lat := 90.0
		if c.Z < 0 {
			lat = -90.0
		}
		return model.GeodeticPoint{
			LatitudeDeg:  lat,
			LongitudeDeg: 0,
			AltitudeKm:   math.Abs(c.Z) - semiMinor,
		}, nil
	}

	lon := math.Atan2(c.Y, c.X)
	lat := math.Atan2(c.Z, p*(1-wgs84E2))

	var alt float64
	for i := 0; i < geodeticIterations; i++ {
		sinLat := math.Sin(lat)
		n := wgs84SemiMajorKm / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		alt = p/math.Cos(lat) - n
		lat = math.Atan2(c.Z, p*(1-wgs84E2*n/(n+alt)))
	}

	return model.GeodeticPoint{
		LatitudeDeg:  radToDeg(lat),
		LongitudeDeg: radToDeg(lon),
		AltitudeKm:   alt,
	}, nil
}

// SurfaceDistance returns the great-circle distance in kilometres
// between two geodetic points, via the haversine formula over the mean
// Earth radius. Altitudes are ignored. Accurate enough for the
// kilometre-scale search radii this engine targets; a full geodesic
// inversion is not warranted.
func SurfaceDistance(a, b model.GeodeticPoint) float64 {
	lat1 := degToRad(a.LatitudeDeg)
	lat2 := degToRad(b.LatitudeDeg)
	dLat := degToRad(b.LatitudeDeg - a.LatitudeDeg)
	dLon := degToRad(b.LongitudeDeg - a.LongitudeDeg)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return MeanEarthRadiusKm * c
}

// ElevationAngle returns the angle in degrees between the local
// horizontal plane at observer and the line of sight to target.
// The horizontal plane is defined by the ellipsoid normal at the
// observer, so 0° is the geometric horizon and 90° is directly
// overhead; negative values mean the target is below the horizon.
func ElevationAngle(observer model.GeodeticPoint, target model.CartesianPoint) (float64, error) {
	obsECEF, err := GeodeticToCartesian(observer)
	if err != nil {
		return 0, err
	}
	if err := target.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	los := Vec3{X: target.X, Y: target.Y, Z: target.Z}.
		Sub(Vec3{X: obsECEF.X, Y: obsECEF.Y, Z: obsECEF.Z})
	losNorm := los.Norm()
	if losNorm == 0 {
		// Target coincides with the observer; treat as overhead.
		return 90, nil
	}

	lat := degToRad(observer.LatitudeDeg)
	lon := degToRad(observer.LongitudeDeg)

	// Ellipsoid normal at the observer (geodetic zenith).
	zenith := Vec3{
		X: math.Cos(lat) * math.Cos(lon),
		Y: math.Cos(lat) * math.Sin(lon),
		Z: math.Sin(lat),
	}

	cosZenithAngle := clampCos(los.Dot(zenith) / losNorm)
	return 90 - radToDeg(math.Acos(cosZenithAngle)), nil
}
