// Package server wires storage, services, and HTTP routes into one process.
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/screenmind/screenmind/internal/config"
	"github.com/screenmind/screenmind/internal/consent"
	"github.com/screenmind/screenmind/internal/events"
	"github.com/screenmind/screenmind/internal/features"
	"github.com/screenmind/screenmind/internal/health"
	"github.com/screenmind/screenmind/internal/history"
	"github.com/screenmind/screenmind/internal/journal"
	"github.com/screenmind/screenmind/internal/logging"
	"github.com/screenmind/screenmind/internal/metrics"
	"github.com/screenmind/screenmind/internal/pipeline"
	"github.com/screenmind/screenmind/internal/ratelimit"
	"github.com/screenmind/screenmind/internal/realtime"
	"github.com/screenmind/screenmind/internal/security"
	"github.com/screenmind/screenmind/internal/sentiment"
	"github.com/screenmind/screenmind/internal/sessions"
	"github.com/screenmind/screenmind/internal/sleep"
	"github.com/screenmind/screenmind/internal/traces"
	"github.com/screenmind/screenmind/internal/validation"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg *config.Config

	eventStore    events.Store
	sessionStore  sessions.Store
	consentStore  consent.Store
	reportedStore features.ReportedStore
	historyStore  history.Store
	journalStore  journal.Store

	sessionSvc    *sessions.Service
	sentimentSvc  *sentiment.Client
	builder       *features.Builder
	collector     *pipeline.Collector
	pipelineTimer *pipeline.Timer
	realtimeHub   *realtime.Hub
	healthReg     *health.Registry
	rateLimiter   *ratelimit.Limiter

	db           *sql.DB // nil if using in-memory
	router       *gin.Engine
	httpSrv      *http.Server
	logger       *slog.Logger
	tracesClose  func(context.Context) error
	cancelRunCtx context.CancelFunc // cancels background goroutines started in Run

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	// Apply options first (may set logger)
	for _, opt := range opts {
		opt(s)
	}

	// Context for initialization
	ctx := context.Background()

	if cfg.SentimentURL != "" {
		if err := security.ValidateEndpointURL(cfg.SentimentURL); err != nil {
			return nil, fmt.Errorf("invalid SENTIMENT_URL: %w", err)
		}
	}

	// Initialize storage (Postgres if DATABASE_URL set, otherwise in-memory)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// Configure connection pool
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		// Test connection
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		s.db = db
		s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))

		eventStore := events.NewPostgresStore(db)
		sessionStore := sessions.NewPostgresStore(db)
		consentStore := consent.NewPostgresStore(db)
		reportedStore := features.NewPostgresReportedStore(db)
		historyStore := history.NewPostgresStore(db, cfg.HistoryDays)
		journalStore := journal.NewPostgresStore(db)

		// Schema creation is idempotent; a failure is logged but the server
		// still starts, so a read-only replica can serve existing data.
		migrators := map[string]interface {
			Migrate(ctx context.Context) error
		}{
			"events":   eventStore,
			"sessions": sessionStore,
			"consent":  consentStore,
			"reported": reportedStore,
			"history":  historyStore,
			"journal":  journalStore,
		}
		for name, m := range migrators {
			if err := m.Migrate(ctx); err != nil {
				s.logger.Warn("migration failed", "store", name, "error", err)
			}
		}

		s.eventStore = eventStore
		s.sessionStore = sessionStore
		s.consentStore = consentStore
		s.reportedStore = reportedStore
		s.historyStore = historyStore
		s.journalStore = journalStore
	} else {
		s.logger.Info("using in-memory storage (set DATABASE_URL for persistence)")
		s.eventStore = events.NewMemoryStore()
		s.sessionStore = sessions.NewMemoryStore()
		s.consentStore = consent.NewMemoryStore()
		s.reportedStore = features.NewMemoryReportedStore()
		s.historyStore = history.NewMemoryStore(cfg.HistoryDays)
		s.journalStore = journal.NewMemoryStore()
	}

	// Tracing (no-op when OTEL_EXPORTER_OTLP_ENDPOINT is unset)
	tracesClose, err := traces.Init(ctx, cfg.OTLPEndpoint, s.logger)
	if err != nil {
		s.logger.Warn("trace exporter init failed", "error", err)
	} else {
		s.tracesClose = tracesClose
	}

	// Services
	s.sessionSvc = sessions.NewService(s.sessionStore, s.eventStore)
	s.sentimentSvc = sentiment.NewClient(cfg.SentimentURL, cfg.SentimentTimeout, s.logger)
	s.realtimeHub = realtime.NewHub(s.logger)

	reported := features.NewReportedSource(s.reportedStore)
	s.builder = features.NewBuilder(
		features.NewEventUsageSource(s.eventStore),
		features.NewEventMobilitySource(s.eventStore, cfg.HomeRadiusM),
		reported,
		reported,
		s.logger,
	)

	s.collector = pipeline.NewCollector(
		s.consentStore,
		s.builder,
		s.historyStore,
		s.realtimeHub,
		cfg.NightStartHour,
		cfg.NightEndHour,
		s.logger,
	)
	s.pipelineTimer = pipeline.NewTimer(s.collector, cfg.CollectInterval, s.logger)

	// Health checks
	s.healthReg = health.NewRegistry()
	s.healthReg.Register("sentiment", func(ctx context.Context) health.Status {
		if err := s.sentimentSvc.HealthCheck(ctx); err != nil {
			return health.Status{Name: "sentiment", Healthy: false, Detail: err.Error()}
		}
		return health.Status{Name: "sentiment", Healthy: true}
	})
	if s.db != nil {
		s.healthReg.Register("database", func(ctx context.Context) health.Status {
			if err := s.db.PingContext(ctx); err != nil {
				return health.Status{Name: "database", Healthy: false, Detail: err.Error()}
			}
			return health.Status{Name: "database", Healthy: true}
		})
	}

	// Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	// Register Prometheus metrics
	metrics.Register()

	s.healthy.Store(true)

	return s, nil
}

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS (the companion app runs from a webview; restrict in production)
	s.router.Use(security.CORSMiddleware([]string{"*"}))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	s.rateLimiter = ratelimit.New(ratelimit.DefaultConfig())
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		// Add to context
		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		// Set response header
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// WebSocket for real-time streaming
	s.router.GET("/v1/ws", func(c *gin.Context) {
		s.realtimeHub.HandleWebSocket(c.Writer, c.Request)
	})

	// V1 API group
	v1 := s.router.Group("/v1")

	events.NewHandler(s.eventStore).RegisterRoutes(v1)
	sessions.NewHandler(s.sessionSvc).WithBroadcaster(s.realtimeHub).RegisterRoutes(v1)
	consent.NewHandler(s.consentStore).RegisterRoutes(v1)
	features.NewReportedHandler(s.reportedStore).RegisterRoutes(v1)
	history.NewHandler(s.historyStore).RegisterRoutes(v1)
	sleep.NewHandler(s.sessionSvc).RegisterRoutes(v1)
	journal.NewHandler(s.journalStore, s.sentimentSvc, s.realtimeHub).RegisterRoutes(v1)
	pipeline.NewHandler(s.collector).RegisterRoutes(v1)
}

// -----------------------------------------------------------------------------
// Health handlers
// -----------------------------------------------------------------------------

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	allHealthy, statuses := s.healthReg.CheckAll(ctx)

	checks := make(map[string]string, len(statuses))
	for _, st := range statuses {
		if st.Healthy {
			checks[st.Name] = "healthy"
		} else {
			checks[st.Name] = "unhealthy"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !allHealthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   "0.1.0",
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func (s *Server) Run(ctx context.Context) error {
	// Create a cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"env", s.cfg.Env,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start realtime hub
	go s.realtimeHub.Run(runCtx)

	// Start scoring pipeline timer
	go s.pipelineTimer.Start(runCtx)

	// Runtime metrics (goroutines, DB pool)
	go metrics.CollectRuntime(runCtx, s.db, 15*time.Second)

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for all background goroutines (hub, pipeline timer)
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	// Stop pipeline timer
	if s.pipelineTimer != nil {
		s.pipelineTimer.Stop()
		s.logger.Info("pipeline timer stopped")
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	// Flush traces
	if s.tracesClose != nil {
		if err := s.tracesClose(ctx); err != nil {
			s.logger.Error("trace exporter close error", "error", err)
		}
	}

	// Close database connection pool
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
