package ephemeris

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/signalsfoundry/proximity-explorer/model"
)

// ErrMissingAPIKey is returned when an N2YO call is attempted without a
// configured key.
var ErrMissingAPIKey = errors.New("n2yo api key not set")

// N2YOClient talks to the N2YO satellite REST API. All calls are rate
// limited; the free tier is unforgiving about bursts.
type N2YOClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// N2YOOptions tunes the client; zero values fall back to defaults.
type N2YOOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// NewN2YOClient builds a client for the given base URL and API key.
func NewN2YOClient(baseURL, apiKey string, opts N2YOOptions) *N2YOClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &N2YOClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// aboveResponse mirrors the fields of the N2YO "above" endpoint that we
// consume; everything else in the payload is ignored.
type aboveResponse struct {
	Info struct {
		SatCount int `json:"satcount"`
	} `json:"info"`
	Above []struct {
		SatID   int     `json:"satid"`
		SatName string  `json:"satname"`
		SatLat  float64 `json:"satlat"`
		SatLng  float64 `json:"satlng"`
		SatAlt  float64 `json:"satalt"`
	} `json:"above"`
	Error string `json:"error"`
}

// Above fetches the satellites currently above the given observer
// footprint and maps them to geodetic satellite records stamped with
// the fetch time. searchRadiusDeg and category follow the N2YO API
// conventions (category "0" means any).
func (c *N2YOClient) Above(ctx context.Context, observer model.GeodeticPoint, searchRadiusDeg int, category string) ([]model.SatelliteRecord, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if category == "" {
		category = "0"
	}

	url := fmt.Sprintf("%s/above/%v/%v/%v/%d/%s/&apiKey=%s",
		c.baseURL,
		observer.LatitudeDeg, observer.LongitudeDeg, observer.AltitudeKm,
		searchRadiusDeg, category, c.apiKey)

	var payload aboveResponse
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("n2yo above: %s", payload.Error)
	}

	now := time.Now().UTC()
	records := make([]model.SatelliteRecord, 0, len(payload.Above))
	for _, sat := range payload.Above {
		records = append(records, model.SatelliteRecord{
			ID:   strconv.Itoa(sat.SatID),
			Name: sat.SatName,
			Position: model.GeodeticPosition(model.GeodeticPoint{
				LatitudeDeg:  sat.SatLat,
				LongitudeDeg: sat.SatLng,
				AltitudeKm:   sat.SatAlt,
			}),
			Timestamp: now,
		})
	}
	return records, nil
}

// positionsResponse mirrors the N2YO "positions" endpoint.
type positionsResponse struct {
	Info struct {
		SatID   int    `json:"satid"`
		SatName string `json:"satname"`
	} `json:"info"`
	Positions []struct {
		SatLatitude  float64 `json:"satlatitude"`
		SatLongitude float64 `json:"satlongitude"`
		SatAltitude  float64 `json:"sataltitude"`
		Timestamp    int64   `json:"timestamp"`
	} `json:"positions"`
	Error string `json:"error"`
}

// Positions fetches a short position series for one satellite, one
// record per second starting now, as seen from the given observer.
func (c *N2YOClient) Positions(ctx context.Context, noradID int, observer model.GeodeticPoint, seconds int) ([]model.SatelliteRecord, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	url := fmt.Sprintf("%s/positions/%d/%v/%v/%v/%d/&apiKey=%s",
		c.baseURL, noradID,
		observer.LatitudeDeg, observer.LongitudeDeg, observer.AltitudeKm,
		seconds, c.apiKey)

	var payload positionsResponse
	if err := c.getJSON(ctx, url, &payload); err != nil {
		return nil, err
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("n2yo positions: %s", payload.Error)
	}

	records := make([]model.SatelliteRecord, 0, len(payload.Positions))
	for _, pos := range payload.Positions {
		records = append(records, model.SatelliteRecord{
			ID:   strconv.Itoa(payload.Info.SatID),
			Name: payload.Info.SatName,
			Position: model.GeodeticPosition(model.GeodeticPoint{
				LatitudeDeg:  pos.SatLatitude,
				LongitudeDeg: pos.SatLongitude,
				AltitudeKm:   pos.SatAltitude,
			}),
			Timestamp: time.Unix(pos.Timestamp, 0).UTC(),
		})
	}
	return records, nil
}

func (c *N2YOClient) getJSON(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("n2yo rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("n2yo request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("n2yo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("n2yo status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("n2yo decode: %w", err)
	}
	return nil
}
