package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/proximity-explorer/core"
	"github.com/signalsfoundry/proximity-explorer/internal/ephemeris"
	"github.com/signalsfoundry/proximity-explorer/internal/logging"
	"github.com/signalsfoundry/proximity-explorer/model"
)

const tracerName = "github.com/signalsfoundry/proximity-explorer/internal/api"

type geodeticDTO struct {
	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	AltitudeKm   float64 `json:"altitude_km"`
}

type cartesianDTO struct {
	XKm float64 `json:"x_km"`
	YKm float64 `json:"y_km"`
	ZKm float64 `json:"z_km"`
}

type satelliteDTO struct {
	ID        string        `json:"id"`
	Name      string        `json:"name,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Cartesian *cartesianDTO `json:"cartesian,omitempty"`
	Geodetic  *geodeticDTO  `json:"geodetic,omitempty"`
}

type observerDTO struct {
	LatitudeDeg  float64   `json:"latitude_deg"`
	LongitudeDeg float64   `json:"longitude_deg"`
	AltitudeKm   float64   `json:"altitude_km"`
	RadiusKm     float64   `json:"radius_km"`
	Instant      time.Time `json:"instant"`
}

type searchRequest struct {
	Observer   observerDTO    `json:"observer"`
	Satellites []satelliteDTO `json:"satellites"`
	InViewOnly bool           `json:"in_view_only"`
}

type resultDTO struct {
	ID           string      `json:"id"`
	Name         string      `json:"name,omitempty"`
	GroundTrack  geodeticDTO `json:"ground_track"`
	AltitudeKm   float64     `json:"altitude_km"`
	DistanceKm   float64     `json:"distance_km"`
	ElevationDeg float64     `json:"elevation_deg"`
	InView       bool        `json:"in_view"`
}

type recordErrorDTO struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

type searchResponse struct {
	BatchID string           `json:"batch_id"`
	Source  string           `json:"source"`
	Results []resultDTO      `json:"results"`
	Errors  []recordErrorDTO `json:"errors"`
	InView  int              `json:"in_view_count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleSearch evaluates an inline batch of satellite records against
// the observer in the request body.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	observer, err := s.observerFromDTO(req.Observer)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records := make([]model.SatelliteRecord, 0, len(req.Satellites))
	for _, dto := range req.Satellites {
		records = append(records, recordFromDTO(dto))
	}

	s.runSearch(w, r, "inline", observer, records, req.InViewOnly)
}

// handleSnapshot propagates the cached TLE set to the requested instant
// and evaluates it against observer query parameters.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.tles == nil || s.tles.Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no TLE set loaded"})
		return
	}

	observer, err := s.observerFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records := ephemeris.Snapshot(s.tles.List(), observer.Instant)
	s.runSearch(w, r, "tle", observer, records, queryBool(r, "in_view_only"))
}

// handleAbove asks N2YO for the satellites above the observer and
// annotates them with the engine's metrics.
func (s *Server) handleAbove(w http.ResponseWriter, r *http.Request) {
	if s.n2yo == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "n2yo source not configured"})
		return
	}

	observer, err := s.observerFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	category := r.URL.Query().Get("category")
	searchRadiusDeg := 90
	if v := r.URL.Query().Get("search_radius_deg"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 90 {
			searchRadiusDeg = parsed
		}
	}

	records, err := s.n2yo.Above(r.Context(), observer.Location, searchRadiusDeg, category)
	if err != nil {
		if errors.Is(err, ephemeris.ErrMissingAPIKey) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	s.runSearch(w, r, "n2yo", observer, records, queryBool(r, "in_view_only"))
}

// handlePositions tracks one satellite over a short window: N2YO
// returns a per-second position series, each sample evaluated against
// the observer.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if s.n2yo == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "n2yo source not configured"})
		return
	}

	noradID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || noradID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "satellite id must be a positive NORAD number"})
		return
	}

	observer, err := s.observerFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	seconds := 1
	if v := r.URL.Query().Get("seconds"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 300 {
			seconds = parsed
		}
	}

	records, err := s.n2yo.Positions(r.Context(), noradID, observer.Location, seconds)
	if err != nil {
		if errors.Is(err, ephemeris.ErrMissingAPIKey) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	s.runSearch(w, r, "n2yo", observer, records, queryBool(r, "in_view_only"))
}

// runSearch is the shared tail of every search endpoint: trace, run the
// engine, record metrics, shape the response.
func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, source string, observer model.ObserverSpec, records []model.SatelliteRecord, inViewOnly bool) {
	ctx, span := otel.Tracer(tracerName).Start(r.Context(), "proximity.search")
	defer span.End()

	batchID := uuid.NewString()
	span.SetAttributes(
		attribute.String("search.batch_id", batchID),
		attribute.String("search.source", source),
		attribute.Int("search.records", len(records)),
		attribute.Float64("search.radius_km", observer.RadiusKm),
	)
	if reqID := logging.RequestIDFromContext(ctx); reqID != "" {
		span.SetAttributes(attribute.String("request_id", reqID))
	}

	start := time.Now()
	results, recordErrs := core.Search(observer, records)
	elapsed := time.Since(start)

	visible := core.InView(results)
	if s.collector != nil {
		reasons := make(map[string]int, len(recordErrs))
		for _, re := range recordErrs {
			reasons[string(re.Reason)]++
		}
		s.collector.ObserveSearch(source, len(records), len(visible), elapsed, reasons)
	}

	shown := results
	if inViewOnly {
		shown = visible
	}

	resp := searchResponse{
		BatchID: batchID,
		Source:  source,
		Results: make([]resultDTO, 0, len(shown)),
		Errors:  make([]recordErrorDTO, 0, len(recordErrs)),
		InView:  len(visible),
	}
	for _, res := range shown {
		resp.Results = append(resp.Results, resultToDTO(res))
	}
	for _, re := range recordErrs {
		dto := recordErrorDTO{ID: re.ID, Reason: string(re.Reason)}
		if re.Err != nil {
			dto.Detail = re.Err.Error()
		}
		resp.Errors = append(resp.Errors, dto)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) observerFromDTO(dto observerDTO) (model.ObserverSpec, error) {
	radius := dto.RadiusKm
	if radius == 0 {
		radius = s.defaultRadiusKm
	}
	instant := dto.Instant
	if instant.IsZero() {
		instant = time.Now().UTC()
	}
	location := model.GeodeticPoint{
		LatitudeDeg:  dto.LatitudeDeg,
		LongitudeDeg: dto.LongitudeDeg,
		AltitudeKm:   dto.AltitudeKm,
	}
	return model.NewObserverSpec(location, instant, radius)
}

func (s *Server) observerFromQuery(r *http.Request) (model.ObserverSpec, error) {
	q := r.URL.Query()

	location := s.defaultObserver
	if v := q.Get("lat"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.ObserverSpec{}, fmt.Errorf("lat: %w", err)
		}
		location.LatitudeDeg = f
	}
	if v := q.Get("lon"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.ObserverSpec{}, fmt.Errorf("lon: %w", err)
		}
		location.LongitudeDeg = f
	}
	if v := q.Get("alt_km"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.ObserverSpec{}, fmt.Errorf("alt_km: %w", err)
		}
		location.AltitudeKm = f
	}

	radius := s.defaultRadiusKm
	if v := q.Get("radius_km"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return model.ObserverSpec{}, fmt.Errorf("radius_km: %w", err)
		}
		radius = f
	}

	instant := time.Now().UTC()
	if v := q.Get("at"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return model.ObserverSpec{}, fmt.Errorf("at: %w", err)
		}
		instant = ts.UTC()
	}

	return model.NewObserverSpec(location, instant, radius)
}

func recordFromDTO(dto satelliteDTO) model.SatelliteRecord {
	rec := model.SatelliteRecord{
		ID:        dto.ID,
		Name:      dto.Name,
		Timestamp: dto.Timestamp.UTC(),
	}
	// Exactly one representation should be present; when both are,
	// cartesian wins. When neither is, the engine reports the record.
	switch {
	case dto.Cartesian != nil:
		rec.Position = model.CartesianPosition(model.CartesianPoint{
			X: dto.Cartesian.XKm, Y: dto.Cartesian.YKm, Z: dto.Cartesian.ZKm,
		})
	case dto.Geodetic != nil:
		rec.Position = model.GeodeticPosition(model.GeodeticPoint{
			LatitudeDeg:  dto.Geodetic.LatitudeDeg,
			LongitudeDeg: dto.Geodetic.LongitudeDeg,
			AltitudeKm:   dto.Geodetic.AltitudeKm,
		})
	}
	return rec
}

func resultToDTO(res model.ProximityResult) resultDTO {
	dto := resultDTO{
		ID:           res.Satellite.ID,
		Name:         res.Satellite.Name,
		DistanceKm:   res.DistanceKm,
		ElevationDeg: res.ElevationDeg,
		InView:       res.InView,
	}

	// Surface the geodetic view of the satellite for table display,
	// deriving it when the record arrived in cartesian form. The
	// conversion cannot fail here: the engine already normalized this
	// position successfully.
	var geo model.GeodeticPoint
	if g, ok := res.Satellite.Position.Geodetic(); ok {
		geo = g
	} else if c, ok := res.Satellite.Position.Cartesian(); ok {
		geo, _ = core.CartesianToGeodetic(c)
	}
	dto.GroundTrack = geodeticDTO{
		LatitudeDeg:  geo.LatitudeDeg,
		LongitudeDeg: geo.LongitudeDeg,
	}
	dto.AltitudeKm = geo.AltitudeKm
	return dto
}

func queryBool(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
