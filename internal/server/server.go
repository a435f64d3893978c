// Package server exposes the compliance engine over HTTP: an evaluate
// endpoint for UI-facing callers, usage endpoints for the copy tracker, and
// a WebSocket feed for the dashboard. Redis and Postgres are optional; with
// neither configured the service runs engine-only.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/marketguard/listing-sentinel/internal/compliance"
	"github.com/marketguard/listing-sentinel/internal/config"
	"github.com/marketguard/listing-sentinel/internal/history"
	"github.com/marketguard/listing-sentinel/internal/logger"
	"github.com/marketguard/listing-sentinel/internal/rules"
	"github.com/marketguard/listing-sentinel/internal/security"
	"github.com/marketguard/listing-sentinel/internal/usage"
	"github.com/marketguard/listing-sentinel/internal/web"
	"github.com/marketguard/listing-sentinel/internal/websocket"
	"go.uber.org/zap"
)

// Server is the HTTP front end of the compliance service.
type Server struct {
	config *config.Config
	logger *logger.Logger

	engineMu sync.RWMutex
	engine   *compliance.Engine // guarded by engineMu for hot reload

	usage   *usage.Store   // nil when usage tracking is disabled
	history *history.Store // nil when history is disabled
	limiter *security.ClientLimiter
	router  *mux.Router
	server  *http.Server
	wsHub   *websocket.Hub
	started time.Time

	totalEvaluations int64 // atomic
	totalFindings    int64 // atomic
}

// Options carries the optional collaborators a Server can run with.
type Options struct {
	Usage   *usage.Store
	History *history.Store
}

// New creates a server around an engine built from cfg.Rules. Optional
// stores come in via opts; nil means that collaborator is disabled.
func New(cfg *config.Config, log *logger.Logger, opts Options) (*Server, error) {
	ruleSet, err := rules.New(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule set: %w", err)
	}

	engine := compliance.New(ruleSet, cfg.Engine.MaxInputBytes, log.WithComponent("engine").Logger)
	wsHub := websocket.NewHub(log.WithComponent("websocket").Logger)

	s := &Server{
		config:  cfg,
		logger:  log.WithComponent("server"),
		engine:  engine,
		usage:   opts.Usage,
		history: opts.History,
		limiter: security.NewClientLimiter(cfg.Security.ClientRateLimit),
		router:  mux.NewRouter(),
		wsHub:   wsHub,
		started: time.Now(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	s.router.HandleFunc("/", web.ServeDashboard).Methods("GET")
	s.router.HandleFunc("/dashboard", web.ServeDashboard).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.clientLimitMiddleware)
	api.HandleFunc("/evaluate", s.handleEvaluate).Methods("POST")
	api.HandleFunc("/usage/{seller}/copy", s.handleRecordCopy).Methods("POST")
	api.HandleFunc("/usage/{seller}", s.handleUsageSnapshot).Methods("GET")
	api.HandleFunc("/history/{seller}", s.handleRecentHistory).Methods("GET")
	api.HandleFunc("/rules", s.handleRules).Methods("GET")
}

// currentEngine returns the engine to use for this request.
func (s *Server) currentEngine() *compliance.Engine {
	s.engineMu.RLock()
	defer s.engineMu.RUnlock()
	return s.engine
}

// ReplaceRules swaps the engine for one built from the new rule config.
// Used by config hot reload; in-flight requests keep the engine they
// started with.
func (s *Server) ReplaceRules(cfg rules.Config) error {
	ruleSet, err := rules.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to build rule set: %w", err)
	}

	engine := compliance.New(ruleSet, s.config.Engine.MaxInputBytes, s.logger.WithComponent("engine").Logger)
	s.engineMu.Lock()
	s.engine = engine
	s.engineMu.Unlock()

	s.logger.Info("Rule set replaced",
		zap.Int("banned_phrases", len(ruleSet.Banned())),
		zap.Int("warning_phrases", len(ruleSet.Warning())),
	)
	return nil
}

// Start starts the HTTP server and the background routines.
func (s *Server) Start() error {
	s.logger.Info("Starting listing-sentinel server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("usage_tracking", s.usage != nil),
		zap.Bool("history", s.history != nil),
	)

	go s.wsHub.Run()
	go s.statusRoutine()
	s.limiter.StartCleanupRoutine()

	return s.server.ListenAndServe()
}

// statusRoutine periodically pushes coarse service health to the dashboard.
func (s *Server) statusRoutine() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if s.wsHub.ClientCount() == 0 {
			continue
		}
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventTypeSystemStatus,
			Timestamp: time.Now(),
			Data: websocket.SystemStatusEvent{
				Status:           "healthy",
				Uptime:           time.Since(s.started).Round(time.Second).String(),
				TotalEvaluations: atomic.LoadInt64(&s.totalEvaluations),
				TotalFindings:    atomic.LoadInt64(&s.totalFindings),
				ConnectedClients: s.wsHub.ClientCount(),
			},
		})
	}
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping listing-sentinel server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

// handleInfo handles info requests.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	rs := s.currentEngine().Rules()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{
		"name":"listing-sentinel",
		"banned_phrases":%d,
		"warning_phrases":%d,
		"usage_tracking":%t,
		"history":%t,
		"uptime":"%s"
	}`, len(rs.Banned()), len(rs.Warning()), s.usage != nil, s.history != nil,
		time.Since(s.started).Round(time.Second))
}

// handleWebSocket handles WebSocket connections for the dashboard.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.wsHub.HandleWebSocket(w, r)
}
