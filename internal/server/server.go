package server

import (
	"context"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/coffersTech/loglab/internal/config"
	"github.com/coffersTech/loglab/internal/logging"
	"github.com/coffersTech/loglab/internal/middleware"
)

// Server hosts the demo API that exercises the logging pipeline. The
// handlers are example glue; the interesting parts are the middleware
// chain and the rerouted server error log.
type Server struct {
	cfg      *config.Config
	pipeline *logging.Pipeline
	log      *logging.Logger
	tracer   trace.Tracer
	client   *http.Client
	gatherer prometheus.Gatherer
	srv      *http.Server
}

// New builds a server around an already configured pipeline. gatherer
// may be nil to disable the /metrics endpoint.
func New(cfg *config.Config, p *logging.Pipeline, gatherer prometheus.Gatherer) *Server {
	return &Server{
		cfg:      cfg,
		pipeline: p,
		log:      p.Logger("loglab.server"),
		tracer:   otel.Tracer("loglab/server"),
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		gatherer: gatherer,
	}
}

// Routes builds the middleware chain and routes. Order matters: the
// correlation id must exist before the server span starts, and both must
// still be live when the access record is emitted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "loglab",
			otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
				return req.Method + " " + req.URL.Path
			}))
	})
	r.Use(middleware.AccessLog(s.pipeline))

	r.Get("/", s.handleRoot)
	r.Get("/ping", s.handlePing)
	r.Get("/test", s.handleTest)
	r.Get("/items/{itemID}", s.handleItem)
	r.Get("/invalid", s.handleInvalid)
	r.Get("/exception", s.handleException)
	r.Get("/external-api", s.handleExternalAPI)

	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Start runs the HTTP server until Shutdown. The server's own error
// logger is rerouted through the pipeline so nothing bypasses the sink.
func (s *Server) Start(addr string) error {
	errLog := stdlog.New(
		logging.NewWriterAdapter(s.pipeline.Logger("http.server"), logging.LevelWarning),
		"", 0)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           gzhttp.GzipHandler(s.Routes()),
		ErrorLog:          errLog,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
