package model

import "time"

// PositionKind discriminates the coordinate representation carried by a
// Position.
type PositionKind int

const (
	PositionUnset PositionKind = iota
	PositionCartesian
	PositionGeodetic
)

// Position is a tagged variant holding exactly one coordinate
// representation. Ingestion layers choose the representation once; the
// proximity engine derives the other as needed instead of branching on
// ad-hoc optional fields.
type Position struct {
	kind      PositionKind
	cartesian CartesianPoint
	geodetic  GeodeticPoint
}

// CartesianPosition wraps an ECEF position.
func CartesianPosition(p CartesianPoint) Position {
	return Position{kind: PositionCartesian, cartesian: p}
}

// GeodeticPosition wraps a geodetic position.
func GeodeticPosition(p GeodeticPoint) Position {
	return Position{kind: PositionGeodetic, geodetic: p}
}

// Kind reports which representation is present.
func (p Position) Kind() PositionKind { return p.kind }

// Cartesian returns the ECEF representation if that is what was supplied.
func (p Position) Cartesian() (CartesianPoint, bool) {
	return p.cartesian, p.kind == PositionCartesian
}

// Geodetic returns the geodetic representation if that is what was supplied.
func (p Position) Geodetic() (GeodeticPoint, bool) {
	return p.geodetic, p.kind == PositionGeodetic
}

// SatelliteRecord is one tracked body at a single instant, as delivered
// by an ephemeris source (API client, TLE snapshot, or CSV loader). The
// proximity engine treats it as read-only input.
type SatelliteRecord struct {
	ID        string
	Name      string
	Position  Position
	Timestamp time.Time
}

// ProximityResult annotates a satellite with metrics derived relative to
// an observer. It is never persisted independently of its record.
type ProximityResult struct {
	Satellite    SatelliteRecord
	DistanceKm   float64 // surface distance from observer to ground track
	ElevationDeg float64 // angle above the observer's local horizon
	InView       bool
}
