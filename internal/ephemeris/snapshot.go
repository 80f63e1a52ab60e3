package ephemeris

import (
	"strconv"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/proximity-explorer/model"
)

// Snapshot propagates each TLE to the given UTC instant with SGP4 and
// returns ECEF satellite records. The proximity core consumes already
// time-aligned positions, so propagation happens here, at the ingestion
// boundary, never inside the engine.
func Snapshot(tles []TLE, at time.Time) []model.SatelliteRecord {
	at = at.UTC()
	year, month, day := at.Date()
	hour, min, sec := at.Clock()

	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)

	records := make([]model.SatelliteRecord, 0, len(tles))
	for _, tle := range tles {
		sat := satellite.TLEToSat(tle.Line1, tle.Line2, satellite.GravityWGS72)
		posECI, _ := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
		posECEF := satellite.ECIToECEF(posECI, gmst)

		records = append(records, model.SatelliteRecord{
			ID:   strconv.Itoa(tle.NoradID),
			Name: tle.Name,
			Position: model.CartesianPosition(model.CartesianPoint{
				X: posECEF.X,
				Y: posECEF.Y,
				Z: posECEF.Z,
			}),
			Timestamp: at,
		})
	}
	return records
}
