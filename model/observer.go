package model

import (
	"fmt"
	"time"
)

// ObserverSpec fixes the geometry of a proximity search: a geodetic
// location, the UTC instant the satellite positions refer to, and the
// radius of the circular surface footprint that defines the field of
// view. A satellite is in view when its ground track falls inside the
// footprint and it sits above the observer's local horizon.
type ObserverSpec struct {
	Location GeodeticPoint
	Instant  time.Time
	RadiusKm float64
}

// NewObserverSpec validates and builds an ObserverSpec. A non-positive
// radius is rejected here rather than clamped later.
func NewObserverSpec(location GeodeticPoint, instant time.Time, radiusKm float64) (ObserverSpec, error) {
	if err := location.Validate(); err != nil {
		return ObserverSpec{}, fmt.Errorf("observer location: %w", err)
	}
	if !(radiusKm > 0) {
		return ObserverSpec{}, fmt.Errorf("radius %v km must be positive", radiusKm)
	}
	return ObserverSpec{
		Location: location,
		Instant:  instant.UTC(),
		RadiusKm: radiusKm,
	}, nil
}
