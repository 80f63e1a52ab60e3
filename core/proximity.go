package core

import (
	"sort"

	"github.com/signalsfoundry/proximity-explorer/model"
)

// Search evaluates every satellite record against the observer and
// returns results ordered by ascending surface distance, ties broken by
// ascending record ID. A satellite is in view when its ground track
// lies within the observer's footprint radius and it sits above the
// observer's local horizon; a surface-distance match alone is not
// enough for a body on the far side of the Earth.
//
// Malformed records are reported in the second return value and do not
// abort the batch. Both slices are never nil-on-success ambiguous:
// empty input yields empty output.
//
// Search is pure computation over read-only inputs. Records are
// independent, so callers needing throughput may fan the per-record
// evaluation out themselves and sort afterwards; this implementation
// keeps the single deterministic pass.
func Search(observer model.ObserverSpec, records []model.SatelliteRecord) ([]model.ProximityResult, []model.RecordError) {
	results := make([]model.ProximityResult, 0, len(records))
	var recordErrs []model.RecordError

	for _, rec := range records {
		res, recErr := Evaluate(observer, rec)
		if recErr != nil {
			recordErrs = append(recordErrs, *recErr)
			continue
		}
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].Satellite.ID < results[j].Satellite.ID
	})

	return results, recordErrs
}

// Evaluate computes the proximity metrics for a single record. The
// record's position is normalized to both representations first:
// whichever was not supplied is derived through the converter.
func Evaluate(observer model.ObserverSpec, rec model.SatelliteRecord) (model.ProximityResult, *model.RecordError) {
	var (
		cart model.CartesianPoint
		geo  model.GeodeticPoint
	)

	switch rec.Position.Kind() {
	case model.PositionCartesian:
		cart, _ = rec.Position.Cartesian()
		derived, err := CartesianToGeodetic(cart)
		if err != nil {
			return model.ProximityResult{}, &model.RecordError{
				ID:     rec.ID,
				Reason: model.ReasonInvalidCartesian,
				Err:    err,
			}
		}
		geo = derived

	case model.PositionGeodetic:
		geo, _ = rec.Position.Geodetic()
		derived, err := GeodeticToCartesian(geo)
		if err != nil {
			return model.ProximityResult{}, &model.RecordError{
				ID:     rec.ID,
				Reason: model.ReasonInvalidGeodetic,
				Err:    err,
			}
		}
		cart = derived

	default:
		return model.ProximityResult{}, &model.RecordError{
			ID:     rec.ID,
			Reason: model.ReasonMissingPosition,
		}
	}

	distanceKm := SurfaceDistance(observer.Location, geo.GroundTrack())

	// Observer location was validated at ObserverSpec construction and
	// cart survived conversion, so this cannot fail on valid specs.
	elevationDeg, err := ElevationAngle(observer.Location, cart)
	if err != nil {
		return model.ProximityResult{}, &model.RecordError{
			ID:     rec.ID,
			Reason: model.ReasonInvalidCartesian,
			Err:    err,
		}
	}

	return model.ProximityResult{
		Satellite:    rec,
		DistanceKm:   distanceKm,
		ElevationDeg: elevationDeg,
		InView:       distanceKm <= observer.RadiusKm && elevationDeg > 0,
	}, nil
}

// InView filters an ordered result slice down to the satellites inside
// the field of view, preserving order.
func InView(results []model.ProximityResult) []model.ProximityResult {
	visible := make([]model.ProximityResult, 0, len(results))
	for _, r := range results {
		if r.InView {
			visible = append(visible, r)
		}
	}
	return visible
}
