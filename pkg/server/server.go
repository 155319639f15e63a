package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"vetchat/relay/pkg/config"
	"vetchat/relay/pkg/providers"
	"vetchat/relay/pkg/proxy"
	"vetchat/relay/pkg/proxy/handlers"
	"vetchat/relay/pkg/proxy/middleware"
	"vetchat/relay/pkg/telemetry"
	"vetchat/relay/pkg/telemetry/health"
	"vetchat/relay/pkg/telemetry/tracing"
)

// BuildInfo is reported on the /version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Components are the collaborators the server routes requests to.
type Components struct {
	Provider    providers.Provider
	Credentials *proxy.Credentials
	Telemetry   *telemetry.Telemetry
	Checker     *health.Checker
	Build       BuildInfo
}

// Server is the relay HTTP server.
type Server struct {
	config     *config.Config
	components Components
	handler    http.Handler
	httpServer *http.Server

	mu      sync.Mutex
	running bool
}

// New creates a server and builds its routes.
func New(cfg *config.Config, components Components) *Server {
	if components.Checker == nil {
		components.Checker = health.New(cfg.Health.CheckTimeout)
	}
	s := &Server{config: cfg, components: components}
	s.handler = s.setupRoutes()
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		_ = ln.Close()
		return errors.New("server is already running")
	}
	s.running = true
	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("relay server listening",
			"address", ln.Addr().String(),
			"paths", s.config.Relay.Paths,
			"credential_mode", s.components.Credentials.Mode(),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	case err, ok := <-errCh:
		s.setStopped()
		if ok {
			return err
		}
		return nil
	}
}

// Shutdown drains in-flight requests, bounded by server.shutdown_timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	running := s.running
	s.mu.Unlock()
	if !running || srv == nil {
		return nil
	}

	slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())
	ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(ctx)
	s.setStopped()
	if err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	slog.Info("relay server stopped")
	return nil
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Server) setStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *Server) setupRoutes() http.Handler {
	cfg := s.config
	tel := s.components.Telemetry
	mux := http.NewServeMux()

	relay := handlers.NewRelayHandler(
		s.components.Provider,
		s.components.Credentials,
		handlers.RelayConfig{
			DefaultModel: cfg.Relay.DefaultModel,
			MaxTokens:    cfg.Relay.MaxTokens,
			Temperature:  *cfg.Relay.Temperature,
			MaxBodyBytes: cfg.Relay.MaxBodyBytes,
		},
		handlers.WithMetrics(tel.Metrics()),
		handlers.WithRedactor(tel.Logger().Redactor()),
	)

	relayMws := []func(http.Handler) http.Handler{middleware.CORSMiddleware(corsConfig(&cfg.Server.CORS))}
	if rl := cfg.Relay.RateLimit; rl.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: rl.RequestsPerSecond,
			Burst:             rl.Burst,
			OnLimited:         func(*http.Request) { tel.Metrics().RecordRateLimited() },
		})
		relayMws = append(relayMws, middleware.RateLimitMiddleware(limiter))
	}
	relayRoute := middleware.Chain(relay, relayMws...)
	for _, path := range cfg.Relay.Paths {
		mux.Handle(path, relayRoute)
	}

	b := s.components.Build
	health.Register(mux, s.components.Checker, b.Version, b.Commit, b.BuildTime)
	mux.Handle("/health/upstream", handlers.NewUpstreamHealthHandler(s.components.Provider))

	if cfg.Telemetry.Metrics.IsEnabled() {
		mux.Handle(cfg.Telemetry.Metrics.Path, tel.Metrics().Handler())
	}

	return middleware.Chain(mux,
		middleware.RecoveryMiddleware,
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware,
		tracing.HTTPMiddleware(tel.Tracer()),
	)
}

func corsConfig(c *config.CORSConfig) *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:        c.IsEnabled(),
		AllowedOrigins: c.AllowedOrigins,
		AllowedMethods: c.AllowedMethods,
		AllowedHeaders: c.AllowedHeaders,
		ExposedHeaders: c.ExposedHeaders,
		MaxAge:         c.MaxAge,
	}
}
