package ephemeris

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/signalsfoundry/proximity-explorer/model"
)

func TestN2YOClient_Above(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/above/40.7128/-74.006/0/70/0/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if !strings.Contains(r.URL.RawQuery+r.URL.Path, "test-key") {
			t.Errorf("api key missing from request: %q", r.URL.String())
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"info": {"satcount": 2},
			"above": [
				{"satid": 25544, "satname": "SPACE STATION", "satlat": 41.1, "satlng": -73.2, "satalt": 420.5},
				{"satid": 43013, "satname": "NOAA 20", "satlat": 39.8, "satlng": -75.0, "satalt": 824.1}
			]
		}`))
	}))
	defer srv.Close()

	client := NewN2YOClient(srv.URL, "test-key", N2YOOptions{RequestsPerSecond: 100, Burst: 10})
	records, err := client.Above(context.Background(), model.GeodeticPoint{LatitudeDeg: 40.7128, LongitudeDeg: -74.0060}, 70, "")
	if err != nil {
		t.Fatalf("Above: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}

	iss := records[0]
	if iss.ID != "25544" || iss.Name != "SPACE STATION" {
		t.Errorf("record identity: %q / %q", iss.ID, iss.Name)
	}
	geo, ok := iss.Position.Geodetic()
	if !ok {
		t.Fatalf("n2yo records must carry geodetic positions")
	}
	if geo.AltitudeKm != 420.5 {
		t.Errorf("altitude: got %v", geo.AltitudeKm)
	}
}

func TestN2YOClient_AboveRequiresAPIKey(t *testing.T) {
	client := NewN2YOClient("http://unused", "", N2YOOptions{})
	_, err := client.Above(context.Background(), model.GeodeticPoint{}, 70, "0")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("want ErrMissingAPIKey, got %v", err)
	}
}

func TestN2YOClient_SurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Invalid API Key!"}`))
	}))
	defer srv.Close()

	client := NewN2YOClient(srv.URL, "bogus", N2YOOptions{RequestsPerSecond: 100, Burst: 10})
	_, err := client.Above(context.Background(), model.GeodeticPoint{}, 70, "0")
	if err == nil || !strings.Contains(err.Error(), "Invalid API Key") {
		t.Fatalf("want API error surfaced, got %v", err)
	}
}

func TestN2YOClient_Positions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/positions/25544/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"info": {"satid": 25544, "satname": "SPACE STATION"},
			"positions": [
				{"satlatitude": 41.1, "satlongitude": -73.2, "sataltitude": 420.5, "timestamp": 1735689600},
				{"satlatitude": 41.2, "satlongitude": -73.1, "sataltitude": 420.6, "timestamp": 1735689601}
			]
		}`))
	}))
	defer srv.Close()

	client := NewN2YOClient(srv.URL, "test-key", N2YOOptions{RequestsPerSecond: 100, Burst: 10})
	records, err := client.Positions(context.Background(), 25544, model.GeodeticPoint{LatitudeDeg: 40.7128, LongitudeDeg: -74.0060}, 2)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
	if records[0].ID != "25544" {
		t.Errorf("record id: got %q", records[0].ID)
	}
	if records[1].Timestamp.Unix() != 1735689601 {
		t.Errorf("timestamp: got %v", records[1].Timestamp)
	}
}

func TestN2YOClient_HTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewN2YOClient(srv.URL, "test-key", N2YOOptions{RequestsPerSecond: 100, Burst: 10})
	if _, err := client.Above(context.Background(), model.GeodeticPoint{}, 70, "0"); err == nil {
		t.Fatalf("want error on non-200 status")
	}
}
