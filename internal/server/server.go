// Package server exposes the intent handler over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	appconfig "github.com/lewisedginton/zapbot/internal/config"
	"github.com/lewisedginton/zapbot/pkg/health"
	"github.com/lewisedginton/zapbot/pkg/httpmiddleware"
	"github.com/lewisedginton/zapbot/pkg/logger"
	"github.com/lewisedginton/zapbot/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

var errDraining = errors.New("server is shutting down")

// IntentHandler answers one free-text request.
type IntentHandler interface {
	Handle(ctx context.Context, input string) (string, error)
}

// NameResolver maps ENS and Base names to addresses.
type NameResolver interface {
	ResolveENS(ctx context.Context, name string) (common.Address, error)
	ResolveBase(ctx context.Context, name string) (common.Address, error)
}

// Server serves the intent API together with health and metrics endpoints.
type Server struct {
	cfg      *appconfig.AppConfig
	log      logger.Logger
	handler  IntentHandler
	names    NameResolver
	metrics  *metrics.Metrics
	health   *health.Checker
	router   chi.Router
	draining atomic.Bool
}

// Option configures optional parts of a Server.
type Option func(*Server)

// WithNameResolver mounts the /v1/resolve endpoints.
func WithNameResolver(names NameResolver) Option {
	return func(s *Server) {
		s.names = names
	}
}

// New builds the router. m may be nil, in which case /metrics is not mounted.
func New(cfg *appconfig.AppConfig, handler IntentHandler, log logger.Logger, m *metrics.Metrics, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("intent handler is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	s := &Server{
		cfg:     cfg,
		log:     log.WithFields(logger.StringField("component", "http_server")),
		handler: handler,
		metrics: m,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.health = health.New(health.WithLogger(s.log))
	s.health.AddLivenessCheck(health.NewCheckFunc("process", func(context.Context) error { return nil }))
	s.health.AddReadinessCheck(health.NewCheckFunc("accepting_requests", func(context.Context) error {
		if s.draining.Load() {
			return errDraining
		}
		return nil
	}))

	s.router = s.routes()
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	mwConfig := httpmiddleware.DefaultConfig(s.log)
	mwConfig.Timeout = s.cfg.HTTP.RequestTimeout()
	if len(s.cfg.HTTP.CORSAllowedOrigins) > 0 {
		mwConfig.CORS.AllowedOrigins = s.cfg.HTTP.CORSAllowedOrigins
	}
	security := httpmiddleware.DefaultSecurityOptions(!s.cfg.IsProduction())
	mwConfig.Security = &security
	if s.metrics != nil {
		mwConfig.Instrument = s.metrics.HTTPMiddleware()
	}
	httpmiddleware.ApplyToRouter(r, mwConfig)

	r.Get("/", s.handleBanner)
	r.Get("/health/live", s.health.LivenessHandler())
	r.Get("/health/ready", s.health.ReadinessHandler())
	if s.metrics != nil && s.cfg.Metrics.Path != "" {
		r.Method(http.MethodGet, s.cfg.Metrics.Path, s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/intents", s.handleIntent)
		if s.names != nil {
			r.Post("/resolve/ens", s.handleResolve("ENS", s.names.ResolveENS))
			r.Post("/resolve/base", s.handleResolve("Base", s.names.ResolveBase))
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Run listens on the configured port until ctx is cancelled or the process
// receives SIGINT or SIGTERM, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", s.cfg.HTTP.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.serve(ctx, listener)
}

func (s *Server) serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.cfg.HTTP.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.HTTP.ReadTimeout(),
		WriteTimeout:      s.cfg.HTTP.WriteTimeout(),
		IdleTimeout:       s.cfg.HTTP.IdleTimeout(),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", logger.StringField("addr", listener.Addr().String()))
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.draining.Store(true)
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout) //nolint:contextcheck // ctx is already done
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil { //nolint:contextcheck // see above
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}
