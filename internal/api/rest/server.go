package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/davidleathers/dependable-verification-backend/internal/domain/values"
	"github.com/davidleathers/dependable-verification-backend/internal/infrastructure/config"
	"github.com/davidleathers/dependable-verification-backend/internal/infrastructure/repository"
	"github.com/davidleathers/dependable-verification-backend/internal/infrastructure/telemetry"
	"github.com/davidleathers/dependable-verification-backend/internal/infrastructure/token"
	"github.com/davidleathers/dependable-verification-backend/internal/metrics"
	"github.com/davidleathers/dependable-verification-backend/internal/service/carrier"
	"github.com/davidleathers/dependable-verification-backend/internal/service/dispatch"
)

// Server hosts the verification HTTP API.
type Server struct {
	config     *config.Config
	httpServer *http.Server
	handler    *Handler
	logger     *slog.Logger
	dispatcher dispatch.Service
	ledger     *repository.AttemptRepository
}

// NewServer wires the full dispatch stack from configuration: simulated
// carriers, balancer, attempt ledger, token issuer, metrics, and the HTTP
// surface over them.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = telemetry.SetupLogger(cfg.LogLevel)
	}

	weights, err := values.NewStepWeightsFromSlice(cfg.Ledger.StepWeights)
	if err != nil {
		return nil, fmt.Errorf("invalid step weights: %w", err)
	}
	ledger := repository.NewAttemptRepository(weights)

	pool := make([]carrier.Carrier, 0, len(cfg.Carriers))
	for _, cc := range cfg.Carriers {
		sim, err := carrier.NewSimulatedCarrier(cc.Name, cc.ChanceSMS, cc.ChanceVoice)
		if err != nil {
			return nil, fmt.Errorf("invalid carrier %q: %w", cc.Name, err)
		}
		pool = append(pool, sim)
	}

	balancer, err := dispatch.NewBalancer(cfg.Balancer.Strategy)
	if err != nil {
		return nil, err
	}

	issuer, err := token.NewIssuer(cfg.Security.TokenSecret, cfg.Security.TokenIssuer, cfg.Security.TokenTTL)
	if err != nil {
		return nil, err
	}

	registry, err := metrics.NewRegistry("verification-backend")
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics registry: %w", err)
	}

	dispatcher := dispatch.NewService(pool, balancer, ledger, issuer, registry, logger)
	handler := NewHandler(dispatcher, ledger, registry, logger, cfg.Version)

	tracer := telemetry.NewOpenTelemetryTracer("api.rest.server")

	middlewares := []Middleware{
		requestIDMiddleware,
		loggingMiddleware(logger),
		MetricsMiddleware(),
		TracingMiddleware(tracer),
		recoveryMiddleware(logger),
	}
	if cfg.Server.RateLimit.Enabled {
		rateLimiter := NewRateLimiter(cfg.Server.RateLimit.RequestsPerSecond, cfg.Server.RateLimit.Burst)
		middlewares = append(middlewares, rateLimiter.Middleware())
	}
	middlewares = append(middlewares, timeoutMiddleware(cfg.Server.RequestTimeout))

	server := &Server{
		config:     cfg,
		handler:    handler,
		logger:     logger,
		dispatcher: dispatcher,
		ledger:     ledger,
	}

	mux := server.setupRoutes()

	var h http.Handler = mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	server.httpServer = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        h,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	return server, nil
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /{$}", s.handler.handleVerify)
	mux.HandleFunc("GET /rank", s.handler.handleRank)
	mux.HandleFunc("GET /health", s.handler.handleHealth)
	mux.Handle("GET /metrics", MetricsHandler())

	return mux
}

// Handler exposes the fully wrapped handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until it fails or a shutdown signal arrives.
func (s *Server) Start() error {
	s.logger.Info("starting verification API server",
		"address", s.httpServer.Addr,
		"version", s.config.Version,
		"environment", s.config.Environment,
		"strategy", s.config.Balancer.Strategy,
		"carriers", len(s.config.Carriers),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown()
	}
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown server", "error", err)
		return err
	}

	s.logger.Info("server shutdown complete", "attempts_recorded", s.ledger.Size())
	return nil
}
