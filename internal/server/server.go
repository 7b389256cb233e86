// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// server.go - Fiber mock of the BuhoFis backend for offline development.
package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/buhofis/buho-tui/internal/logging"
	"github.com/buhofis/buho-tui/internal/navigation"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is used when Options.Addr is empty.
	DefaultAddr = "127.0.0.1:8000"

	// DefaultTokenInterval paces the streamed tokens.
	DefaultTokenInterval = 250 * time.Millisecond

	// shutdownTimeout bounds graceful shutdown once the run context ends.
	shutdownTimeout = 5 * time.Second
)

// Options configures the mock backend.
type Options struct {
	Addr string

	// TokenInterval is the delay between streamed tokens. Zero streams
	// without delay.
	TokenInterval time.Duration

	// FilesDir is served under /files/download. Empty disables downloads.
	FilesDir string
}

// ============================================================================
// SERVER STATS
// ============================================================================

// ServerStats counts what the mock has served since it started.
type ServerStats struct {
	StartTime time.Time
	requests  atomic.Int64
	streams   atomic.Int64
	questions atomic.Int64
}

// NewServerStats creates stats starting now.
func NewServerStats() *ServerStats {
	return &ServerStats{StartTime: time.Now()}
}

// StatsSnapshot is the JSON body of GET /stats.
type StatsSnapshot struct {
	Requests      int64   `json:"requests"`
	Streams       int64   `json:"streams"`
	Questions     int64   `json:"questions"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Snapshot returns a point-in-time copy of the counters.
func (s *ServerStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Requests:      s.requests.Load(),
		Streams:       s.streams.Load(),
		Questions:     s.questions.Load(),
		UptimeSeconds: time.Since(s.StartTime).Seconds(),
	}
}

// ============================================================================
// SERVER
// ============================================================================

// Server serves the navigation, RAG and file endpoints the client expects,
// backed by a static flow tree and canned answers.
type Server struct {
	app   *fiber.App
	opts  Options
	tree  *navigation.StaticSource
	log   logging.Logger
	stats *ServerStats

	mu      sync.Mutex
	running bool
}

// New builds the Fiber app. A nil logger discards request logs.
func New(tree *navigation.StaticSource, opts Options, log logging.Logger) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.TokenInterval < 0 {
		opts.TokenInterval = 0
	}
	if log == nil {
		log = logging.NewNop()
	}

	s := &Server{
		opts:  opts,
		tree:  tree,
		log:   log,
		stats: NewServerStats(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "buho-mock",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, ngrok-skip-browser-warning",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(otelfiber.Middleware())
	app.Use(s.requestLogger())

	s.app = app
	s.setupRoutes()
	return s
}

// App exposes the Fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.opts.Addr
}

// Stats returns the server counters.
func (s *Server) Stats() *ServerStats {
	return s.stats
}

// setupRoutes registers every endpoint.
func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/stats", s.handleStats)

	s.app.Get("/navigation", s.handleNavigationRoot)
	s.app.Post("/navigation/next", s.handleNavigationNext)

	rag := s.app.Group("/rag")
	rag.Post("/ask", s.handleAsk)
	rag.Post("/stream", s.handleStream)

	s.app.Get("/files/download/:name", s.handleDownload)
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("SERVER", "mock backend listening", map[string]interface{}{
			"addr":           s.opts.Addr,
			"token_interval": s.opts.TokenInterval.String(),
			"files_dir":      s.opts.FilesDir,
		})
		errCh <- s.app.Listen(s.opts.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		s.log.Info("SERVER", "mock backend stopped", nil)
		return nil
	}
}
