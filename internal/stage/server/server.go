package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	mdwlog "github.com/msto63/dramatica/foundation/core/log"
	"github.com/msto63/dramatica/foundation/scene"
	"github.com/msto63/dramatica/internal/session"
	"github.com/msto63/dramatica/internal/stage/handler"
	"github.com/msto63/dramatica/internal/stage/schema"
	"github.com/msto63/dramatica/pkg/core/health"
	"github.com/msto63/dramatica/pkg/core/version"
)

// RequestIDHeader carries the request id on HTTP requests and responses
const RequestIDHeader = "X-Request-ID"

// Server is the Dramatica stage HTTP server
type Server struct {
	httpServer *http.Server
	handler    *handler.Handler
	manager    *session.Manager
	health     *health.Registry
	logger     *mdwlog.Logger
	config     Config
	listener   net.Listener
}

// Config holds server configuration
type Config struct {
	Host           string
	HTTPPort       int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int64
	CORS           handler.CORS
	MaxSessions    int // health turns degraded at this many sessions; 0 disables
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		HTTPPort:       8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxRequestSize: 1 << 20,
	}
}

// New creates a new stage server around an engine and a session manager
func New(cfg Config, engine *scene.Engine, manager *session.Manager, logger *mdwlog.Logger) (*Server, error) {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	if engine == nil {
		engine = scene.New(scene.Options{Logger: logger})
	}
	if manager == nil {
		manager = session.NewManager(session.Options{Engine: engine, Logger: logger})
	}

	validator, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load request schemas: %w", err)
	}

	// Create health registry
	healthRegistry := health.NewRegistry("dramatica-stage", version.Stage)
	healthRegistry.RegisterFunc("http", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{
			Name:    "http",
			Status:  health.StatusHealthy,
			Message: "HTTP server is running",
		}
	})
	registerStoreChecks(healthRegistry, manager.Store(), cfg.MaxSessions)

	h := handler.NewHandler(handler.Config{
		Engine:         engine,
		Manager:        manager,
		Health:         healthRegistry,
		Validator:      validator,
		Logger:         logger,
		MaxRequestSize: cfg.MaxRequestSize,
		CORS:           cfg.CORS,
	})

	var origins []string
	if cfg.CORS.Enabled {
		origins = cfg.CORS.AllowedOrigins
	}
	wsHandler := handler.NewWebSocketHandler(manager, validator, logger, origins, cfg.MaxRequestSize)

	// Create HTTP server
	mux := http.NewServeMux()

	// WebSocket route
	mux.Handle("/api/v1/ws", wsHandler)

	// API routes
	mux.Handle("/", h)

	serverLogger := logger.WithField("component", "stage-server")

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPPort),
		Handler:      requestIDMiddleware(loggingMiddleware(serverLogger, mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		handler:    h,
		manager:    manager,
		health:     healthRegistry,
		logger:     serverLogger,
		config:     cfg,
	}, nil
}

// registerStoreChecks adds the checks a store supports
func registerStoreChecks(registry *health.Registry, store session.Store, maxSessions int) {
	if p, ok := store.(interface {
		Ping(ctx context.Context) error
	}); ok {
		registry.Register(health.PingCheck("session-store", p.Ping, time.Second))
	}
	if e, ok := store.(interface{ Endpoint() string }); ok && e.Endpoint() != "" {
		registry.Register(health.TCPCheck("session-store-tcp", e.Endpoint(), time.Second))
	}
	if l, ok := store.(interface{ Len() int }); ok {
		registry.Register(health.ThresholdCheck("sessions", l.Len, maxSessions))
	}
}

type requestIDKey struct{}

// RequestID returns the request id assigned by the server
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// requestIDMiddleware assigns every request an id
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *mdwlog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.WithRequestID(RequestID(r.Context())).Info("HTTP request", mdwlog.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapper.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer
func (w *responseWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack implements http.Hijacker for the WebSocket upgrade
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Handler returns the root HTTP handler, middleware included
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Listen binds the configured address without serving yet
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener
	return nil
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.logger.Info("Starting Dramatica stage", mdwlog.Fields{"address": s.Address()})

	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartAsync starts the server asynchronously
func (s *Server) StartAsync() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.logger.Info("Starting Dramatica stage (async)", mdwlog.Fields{"address": s.Address()})

	go func() {
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorWithErr("HTTP server error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the server. The session manager is left open;
// its owner closes it.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping Dramatica stage")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
