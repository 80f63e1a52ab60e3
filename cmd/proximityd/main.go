package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/signalsfoundry/proximity-explorer/internal/api"
	"github.com/signalsfoundry/proximity-explorer/internal/config"
	"github.com/signalsfoundry/proximity-explorer/internal/ephemeris"
	"github.com/signalsfoundry/proximity-explorer/internal/logging"
	"github.com/signalsfoundry/proximity-explorer/internal/observability"
	"github.com/signalsfoundry/proximity-explorer/model"
)

func main() {
	configPath := flag.String("config", "configs/proximity.yaml", "Path to the YAML configuration file")
	listenAddr := flag.String("listen-addr", "", "HTTP address for the search API (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics (overrides config)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewFromEnv().Error(ctx, "invalid configuration", logging.Err(err))
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *metricsAddr != "" {
		cfg.Server.MetricsAddr = *metricsAddr
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	collector, err := observability.NewCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := ephemeris.NewStore()
	store.Subscribe(func(count int) {
		collector.TLEsLoaded.Set(float64(count))
	})

	celestrak := ephemeris.NewCelesTrakClient(cfg.CelesTrak.BaseURL, cfg.CelesTrak.Timeout.Std())
	refresher := ephemeris.NewRefresher(celestrak, store, cfg.CelesTrak.Group, cfg.CelesTrak.Refresh.Std(), log)
	go refresher.Run(stopCtx)

	n2yo := ephemeris.NewN2YOClient(cfg.N2YO.BaseURL, cfg.N2YO.APIKey, ephemeris.N2YOOptions{
		Timeout:           cfg.N2YO.Timeout.Std(),
		RequestsPerSecond: cfg.N2YO.RequestsPerSecond,
		Burst:             cfg.N2YO.Burst,
	})

	server := api.NewServer(cfg.Server.ListenAddr, api.Options{
		Log:       log,
		Collector: collector,
		N2YO:      n2yo,
		TLEs:      store,
		DefaultObserver: model.GeodeticPoint{
			LatitudeDeg:  cfg.Observer.LatitudeDeg,
			LongitudeDeg: cfg.Observer.LongitudeDeg,
			AltitudeKm:   cfg.Observer.AltitudeKm,
		},
		DefaultRadiusKm: cfg.Observer.RadiusKm,
	})

	metricsSrv := serveMetrics(cfg.Server.MetricsAddr, collector, log)

	go func() {
		log.Info(ctx, "starting proximity API server", logging.String("addr", cfg.Server.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "API server exited", logging.Err(err))
			stop()
		}
	}()

	<-stopCtx.Done()
	log.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "API server shutdown", logging.Err(err))
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func serveMetrics(addr string, collector *observability.Collector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
