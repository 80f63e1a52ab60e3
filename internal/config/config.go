package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration for the proximity
// explorer. Values come from an optional YAML file, overlaid with
// environment variables (optionally loaded from a .env file first).
// The core engine never reads any of this: main() turns it into an
// explicit ObserverSpec.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Observer  ObserverConfig  `yaml:"observer"`
	N2YO      N2YOConfig      `yaml:"n2yo"`
	CelesTrak CelesTrakConfig `yaml:"celestrak"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Duration wraps time.Duration so YAML values can be written as
// "10s" or "1h" strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type ServerConfig struct {
	ListenAddr      string   `yaml:"listen_addr"`
	MetricsAddr     string   `yaml:"metrics_addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// ObserverConfig carries the default search parameters, matching the
// tool's historical defaults (New York City, 100 km footprint).
type ObserverConfig struct {
	LatitudeDeg  float64 `yaml:"latitude_deg"`
	LongitudeDeg float64 `yaml:"longitude_deg"`
	AltitudeKm   float64 `yaml:"altitude_km"`
	RadiusKm     float64 `yaml:"radius_km"`
	Instant      string  `yaml:"instant"` // RFC 3339; empty means "now"
}

type N2YOConfig struct {
	APIKey            string   `yaml:"api_key"`
	BaseURL           string   `yaml:"base_url"`
	Timeout           Duration `yaml:"timeout"`
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
}

type CelesTrakConfig struct {
	BaseURL string   `yaml:"base_url"`
	Group   string   `yaml:"group"`
	Timeout Duration `yaml:"timeout"`
	Refresh Duration `yaml:"refresh"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MetricsAddr:     ":9090",
			ShutdownTimeout: Duration(5 * time.Second),
		},
		Observer: ObserverConfig{
			LatitudeDeg:  40.7128,
			LongitudeDeg: -74.0060,
			RadiusKm:     100,
		},
		N2YO: N2YOConfig{
			BaseURL:           "https://api.n2yo.com/rest/v1/satellite",
			Timeout:           Duration(10 * time.Second),
			RequestsPerSecond: 1,
			Burst:             3,
		},
		CelesTrak: CelesTrakConfig{
			BaseURL: "https://celestrak.com/NORAD/elements/",
			Group:   "stations",
			Timeout: Duration(10 * time.Second),
			Refresh: Duration(time.Hour),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML file
// at path (skipped when path is empty or missing), then environment
// overrides. A .env file in the working directory is loaded first when
// present, so local development keys stay out of the shell profile.
func Load(path string) (Config, error) {
	// Missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to env overrides.
		case err != nil:
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %q: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Observer.RadiusKm <= 0 {
		return fmt.Errorf("observer.radius_km must be positive, got %v", c.Observer.RadiusKm)
	}
	if c.Observer.Instant != "" {
		if _, err := time.Parse(time.RFC3339, c.Observer.Instant); err != nil {
			return fmt.Errorf("observer.instant: %w", err)
		}
	}
	return nil
}

// ObserverInstant resolves the configured instant, defaulting to the
// current UTC time.
func (c Config) ObserverInstant() time.Time {
	if c.Observer.Instant == "" {
		return time.Now().UTC()
	}
	ts, err := time.Parse(time.RFC3339, c.Observer.Instant)
	if err != nil {
		return time.Now().UTC()
	}
	return ts.UTC()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("N2YO_API_KEY"); v != "" {
		cfg.N2YO.APIKey = v
	}
	if v := os.Getenv("PROXIMITY_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("PROXIMITY_METRICS_ADDR"); v != "" {
		cfg.Server.MetricsAddr = v
	}
	if v := os.Getenv("PROXIMITY_TLE_GROUP"); v != "" {
		cfg.CelesTrak.Group = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("PROXIMITY_OBSERVER_LAT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Observer.LatitudeDeg = f
		}
	}
	if v := os.Getenv("PROXIMITY_OBSERVER_LON"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Observer.LongitudeDeg = f
		}
	}
	if v := os.Getenv("PROXIMITY_OBSERVER_RADIUS_KM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Observer.RadiusKm = f
		}
	}
}
