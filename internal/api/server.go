package api

import (
	"context"
	"net/http"
	"time"

	"github.com/signalsfoundry/proximity-explorer/internal/ephemeris"
	"github.com/signalsfoundry/proximity-explorer/internal/logging"
	"github.com/signalsfoundry/proximity-explorer/internal/observability"
	"github.com/signalsfoundry/proximity-explorer/model"
)

// Options carries the collaborators a Server can serve from. N2YO and
// TLEs are optional; the corresponding endpoints answer 503 when their
// source is absent.
type Options struct {
	Log       logging.Logger
	Collector *observability.Collector

	N2YO *ephemeris.N2YOClient
	TLEs *ephemeris.Store

	// DefaultObserver fills in search parameters the caller omits.
	DefaultObserver model.GeodeticPoint
	DefaultRadiusKm float64
}

// Server is the HTTP query surface over the proximity core.
type Server struct {
	httpServer *http.Server
	log        logging.Logger

	collector *observability.Collector
	n2yo      *ephemeris.N2YOClient
	tles      *ephemeris.Store

	defaultObserver model.GeodeticPoint
	defaultRadiusKm float64
}

// NewServer wires routes and middleware for the given listen address.
func NewServer(addr string, opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logging.Noop()
	}

	s := &Server{
		log:             log,
		collector:       opts.Collector,
		n2yo:            opts.N2YO,
		tles:            opts.TLEs,
		defaultObserver: opts.DefaultObserver,
		defaultRadiusKm: opts.DefaultRadiusKm,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("POST /v1/search", s.handleSearch)
	mux.HandleFunc("GET /v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /v1/above", s.handleAbove)
	mux.HandleFunc("GET /v1/positions/{id}", s.handlePositions)
	if opts.Collector != nil {
		mux.Handle("GET /metrics", opts.Collector.Handler())
	}

	// The collector wraps the mux directly: the mux records the matched
	// pattern on the request it receives, and the logging middleware
	// above it hands down a fresh shallow copy.
	var handler http.Handler = mux
	if opts.Collector != nil {
		handler = opts.Collector.Middleware(handler)
	}
	handler = s.loggingMiddleware(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler exposes the composed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error { return s.httpServer.ListenAndServe() }

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error { return s.httpServer.Shutdown(ctx) }

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware attaches a request_id to the context and logs every
// request with its outcome and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, reqLog := logging.WithRequestLogger(r.Context(), s.log)
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sr, r.WithContext(ctx))

		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			return
		}
		reqLog.Info(ctx, "request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", sr.status),
			logging.Int("duration_ms", int(time.Since(start).Milliseconds())),
		)
	})
}
