package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles Prometheus metrics for the proximity service and
// provides helpers to wire them into HTTP handlers.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	Searches         *prometheus.CounterVec
	SearchDurations  prometheus.Histogram
	RecordsEvaluated prometheus.Counter
	RecordErrors     *prometheus.CounterVec
	SatellitesInView prometheus.Gauge
	TLEsLoaded       prometheus.Gauge
}

// NewCollector registers the proximity metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proximity_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by method, path, and status code.",
	}, []string{"method", "path", "code"})
	httpRequests, err := registerCounterVec(reg, httpRequests, "proximity_http_requests_total")
	if err != nil {
		return nil, err
	}

	httpDurations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proximity_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "path"})
	httpDurations, err = registerHistogramVec(reg, httpDurations, "proximity_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proximity_searches_total",
		Help: "Total number of proximity searches, labeled by record source.",
	}, []string{"source"})
	searches, err = registerCounterVec(reg, searches, "proximity_searches_total")
	if err != nil {
		return nil, err
	}

	searchDurations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "proximity_search_duration_seconds",
		Help:    "Proximity search evaluation latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}), "proximity_search_duration_seconds")
	if err != nil {
		return nil, err
	}

	recordsEvaluated, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "proximity_records_evaluated_total",
		Help: "Total number of satellite records fed into the proximity engine.",
	}), "proximity_records_evaluated_total")
	if err != nil {
		return nil, err
	}

	recordErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proximity_record_errors_total",
		Help: "Total number of malformed satellite records, labeled by reason.",
	}, []string{"reason"})
	recordErrors, err = registerCounterVec(reg, recordErrors, "proximity_record_errors_total")
	if err != nil {
		return nil, err
	}

	inView, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "proximity_satellites_in_view",
		Help: "Number of satellites in view in the most recent search.",
	}), "proximity_satellites_in_view")
	if err != nil {
		return nil, err
	}

	tlesLoaded, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "proximity_tles_loaded",
		Help: "Number of TLE element sets currently cached.",
	}), "proximity_tles_loaded")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		HTTPRequests:     httpRequests,
		HTTPDurations:    httpDurations,
		Searches:         searches,
		SearchDurations:  searchDurations,
		RecordsEvaluated: recordsEvaluated,
		RecordErrors:     recordErrors,
		SatellitesInView: inView,
		TLEsLoaded:       tlesLoaded,
	}, nil
}

// ObserveSearch records the outcome of one proximity search.
func (c *Collector) ObserveSearch(source string, records, inView int, elapsed time.Duration, errorReasons map[string]int) {
	if c == nil {
		return
	}
	c.Searches.WithLabelValues(source).Inc()
	c.SearchDurations.Observe(elapsed.Seconds())
	c.RecordsEvaluated.Add(float64(records))
	for reason, n := range errorReasons {
		c.RecordErrors.WithLabelValues(reason).Add(float64(n))
	}
	c.SatellitesInView.Set(float64(inView))
}

// Middleware instruments an HTTP handler with request counts and
// durations. The path label uses the routing pattern, not the raw URL,
// to keep cardinality bounded.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		c.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		c.HTTPDurations.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
