package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/cellmap/pkg/buildinfo"
	"github.com/matzehuels/cellmap/pkg/observability"
	"github.com/matzehuels/cellmap/pkg/pipeline"
)

// DefaultMaxBodyBytes limits the size of config documents.
const DefaultMaxBodyBytes = 8 << 20

// Options configures a [Server].
type Options struct {
	// Gatherer backs GET /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// MaxBodyBytes limits request bodies. Zero selects DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Workers bounds concurrent site layouts per request. Zero selects
	// GOMAXPROCS.
	Workers int

	// Timeout bounds each request. Zero disables the limit.
	Timeout time.Duration
}

// Server handles API requests with a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
}

// New creates a server. A nil logger selects log.Default().
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{runner: runner, logger: logger, opts: opts}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.opts.Timeout > 0 {
		r.Use(middleware.Timeout(s.opts.Timeout))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.instrument)
		r.Get("/healthz", s.handleHealth)
		r.Post("/v1/layouts", s.handleLayout)
		r.Post("/v1/layouts/svg", s.handleSVG)
	})
	if s.opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// instrument reports each request to the HTTP hooks and the log. It runs
// after routing so the route pattern is known.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := chi.RouteContext(r.Context()).RoutePattern()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{Status: "ok", Info: buildinfo.Get()})
}
