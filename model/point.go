package model

import (
	"fmt"
	"math"
)

// MinAltitudeKm is the lowest altitude accepted for a geodetic point.
// Observers slightly below sea level (Dead Sea, mines) are tolerated.
const MinAltitudeKm = -12.0

// GeodeticPoint is a position relative to the WGS84 reference ellipsoid.
// Latitude and longitude are in degrees, altitude in kilometres.
type GeodeticPoint struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	AltitudeKm   float64
}

// Validate checks that every component lies in its declared range.
func (g GeodeticPoint) Validate() error {
	if math.IsNaN(g.LatitudeDeg) || g.LatitudeDeg < -90 || g.LatitudeDeg > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", g.LatitudeDeg)
	}
	if math.IsNaN(g.LongitudeDeg) || g.LongitudeDeg < -180 || g.LongitudeDeg > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", g.LongitudeDeg)
	}
	if math.IsNaN(g.AltitudeKm) || math.IsInf(g.AltitudeKm, 0) || g.AltitudeKm < MinAltitudeKm {
		return fmt.Errorf("altitude %v below minimum %v km", g.AltitudeKm, MinAltitudeKm)
	}
	return nil
}

// GroundTrack returns the same point projected onto the surface
// (altitude zeroed).
func (g GeodeticPoint) GroundTrack() GeodeticPoint {
	return GeodeticPoint{LatitudeDeg: g.LatitudeDeg, LongitudeDeg: g.LongitudeDeg}
}

// CartesianPoint is an Earth-Centered Earth-Fixed position in kilometres.
type CartesianPoint struct {
	X float64
	Y float64
	Z float64
}

// Validate rejects non-finite components.
func (c CartesianPoint) Validate() error {
	for _, v := range [3]float64{c.X, c.Y, c.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite cartesian component %v", v)
		}
	}
	return nil
}
