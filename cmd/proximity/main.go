package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/signalsfoundry/proximity-explorer/core"
	"github.com/signalsfoundry/proximity-explorer/internal/config"
	"github.com/signalsfoundry/proximity-explorer/internal/ephemeris"
	"github.com/signalsfoundry/proximity-explorer/model"
)

func main() {
	configPath := flag.String("config", "", "optional YAML configuration file")
	csvPath := flag.String("csv", "", "load cartesian ephemeris rows from a CSV file")
	tleGroup := flag.String("tle-group", "", "fetch a CelesTrak group and propagate it (e.g. stations, starlink)")
	useN2YO := flag.Bool("n2yo", false, "query the N2YO above endpoint (requires N2YO_API_KEY)")
	lat := flag.Float64("lat", 40.7128, "observer latitude in degrees")
	lon := flag.Float64("lon", -74.0060, "observer longitude in degrees")
	alt := flag.Float64("alt", 0, "observer altitude in km")
	radius := flag.Float64("radius", 100, "search radius in km")
	at := flag.String("at", "", "evaluation instant, RFC 3339 (default: now)")
	inViewOnly := flag.Bool("in-view", false, "print only satellites inside the footprint and above the horizon")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("invalid configuration: %v", err)
	}

	instant := time.Now().UTC()
	if *at != "" {
		instant, err = time.Parse(time.RFC3339, *at)
		if err != nil {
			fatalf("invalid -at value %q: %v", *at, err)
		}
	}

	observer, err := model.NewObserverSpec(model.GeodeticPoint{
		LatitudeDeg:  *lat,
		LongitudeDeg: *lon,
		AltitudeKm:   *alt,
	}, instant, *radius)
	if err != nil {
		fatalf("invalid observer: %v", err)
	}

	records, source, err := loadRecords(ctx, cfg, observer, *csvPath, *tleGroup, *useN2YO)
	if err != nil {
		fatalf("%v", err)
	}

	results, recordErrs := core.Search(observer, records)
	shown := results
	if *inViewOnly {
		shown = core.InView(results)
	}

	fmt.Printf("Observer (%.4f, %.4f) alt=%.1f km, radius=%.1f km at %s [%s, %d records]\n",
		observer.Location.LatitudeDeg, observer.Location.LongitudeDeg,
		observer.Location.AltitudeKm, observer.RadiusKm,
		observer.Instant.Format(time.RFC3339), source, len(records))

	for _, res := range shown {
		marker := " "
		if res.InView {
			marker = "*"
		}
		fmt.Printf("%s %-12s %-24s dist=%9.2f km  elev=%7.2f deg\n",
			marker, res.Satellite.ID, res.Satellite.Name, res.DistanceKm, res.ElevationDeg)
	}
	fmt.Printf("%d evaluated, %d in view\n", len(results), len(core.InView(results)))

	for _, re := range recordErrs {
		fmt.Fprintf(os.Stderr, "warning: skipped record %q: %v\n", re.ID, re.Err)
	}
	if len(recordErrs) > 0 {
		os.Exit(2)
	}
}

// loadRecords resolves the satellite set from exactly one source,
// preferring an explicit CSV file, then a TLE group, then N2YO.
func loadRecords(
	ctx context.Context,
	cfg config.Config,
	observer model.ObserverSpec,
	csvPath, tleGroup string,
	useN2YO bool,
) ([]model.SatelliteRecord, string, error) {
	switch {
	case csvPath != "":
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, "", fmt.Errorf("open ephemeris %q: %w", csvPath, err)
		}
		defer f.Close()
		records, err := ephemeris.LoadCSV(f, ephemeris.CSVOptions{})
		if err != nil {
			return nil, "", fmt.Errorf("parse ephemeris %q: %w", csvPath, err)
		}
		return records, "csv", nil

	case tleGroup != "":
		client := ephemeris.NewCelesTrakClient(cfg.CelesTrak.BaseURL, cfg.CelesTrak.Timeout.Std())
		tles, err := client.FetchGroup(ctx, tleGroup)
		if err != nil {
			return nil, "", fmt.Errorf("fetch TLE group %q: %w", tleGroup, err)
		}
		return ephemeris.Snapshot(tles, observer.Instant), "tle", nil

	case useN2YO:
		client := ephemeris.NewN2YOClient(cfg.N2YO.BaseURL, cfg.N2YO.APIKey, ephemeris.N2YOOptions{
			Timeout:           cfg.N2YO.Timeout.Std(),
			RequestsPerSecond: cfg.N2YO.RequestsPerSecond,
			Burst:             cfg.N2YO.Burst,
		})
		records, err := client.Above(ctx, observer.Location, 90, "0")
		if err != nil {
			return nil, "", fmt.Errorf("n2yo above: %w", err)
		}
		return records, "n2yo", nil
	}

	return nil, "", fmt.Errorf("no satellite source: pass -csv, -tle-group or -n2yo")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "proximity: "+format+"\n", args...)
	os.Exit(1)
}
