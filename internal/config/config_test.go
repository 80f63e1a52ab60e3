package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Observer.LatitudeDeg != 40.7128 || cfg.Observer.LongitudeDeg != -74.0060 {
		t.Errorf("default observer location changed: %+v", cfg.Observer)
	}
	if cfg.Observer.RadiusKm != 100 {
		t.Errorf("default radius: got %v, want 100", cfg.Observer.RadiusKm)
	}
	if cfg.N2YO.BaseURL == "" || cfg.CelesTrak.BaseURL == "" {
		t.Errorf("data source URLs must have defaults: %+v %+v", cfg.N2YO, cfg.CelesTrak)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proximity.yaml")
	body := `
server:
  listen_addr: ":7000"
observer:
  latitude_deg: 51.5074
  longitude_deg: -0.1278
  radius_km: 25
  instant: "2025-01-01T00:00:00Z"
celestrak:
  group: starlink
  refresh: 30m
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ListenAddr != ":7000" {
		t.Errorf("listen addr: got %q", cfg.Server.ListenAddr)
	}
	if cfg.Observer.RadiusKm != 25 {
		t.Errorf("radius: got %v", cfg.Observer.RadiusKm)
	}
	if cfg.CelesTrak.Group != "starlink" {
		t.Errorf("tle group: got %q", cfg.CelesTrak.Group)
	}
	if cfg.CelesTrak.Refresh.Std() != 30*time.Minute {
		t.Errorf("refresh: got %v", cfg.CelesTrak.Refresh.Std())
	}
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.ObserverInstant().Equal(want) {
		t.Errorf("instant: got %v, want %v", cfg.ObserverInstant(), want)
	}
	// File did not touch the metrics address; the default survives.
	if cfg.Server.MetricsAddr != ":9090" {
		t.Errorf("metrics addr default lost: %q", cfg.Server.MetricsAddr)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("N2YO_API_KEY", "test-key")
	t.Setenv("PROXIMITY_OBSERVER_RADIUS_KM", "40")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.N2YO.APIKey != "test-key" {
		t.Errorf("api key not picked up from env: %q", cfg.N2YO.APIKey)
	}
	if cfg.Observer.RadiusKm != 40 {
		t.Errorf("radius env override: got %v", cfg.Observer.RadiusKm)
	}
}

func TestLoad_RejectsNonPositiveRadius(t *testing.T) {
	t.Setenv("PROXIMITY_OBSERVER_RADIUS_KM", "-1")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected negative radius to be rejected")
	}
}
