// Package server exposes the question-answering pipeline over HTTP.
//
// Each chat request carries a session ID (or receives a fresh one) and a
// message. The server loads the session's history, runs the pipeline, appends
// both turns to the persisted history, and returns the answer. Histories are
// cached in memory with a TTL and written through to the session repository.
package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"github.com/poiesic/inquiro/flow"
	"github.com/poiesic/inquiro/storage"
)

const (
	// defaultCacheTTL bounds how long an idle session history stays in memory.
	defaultCacheTTL = 1 * time.Hour
	// cachePurgeInterval is how often expired histories are evicted.
	cachePurgeInterval = 10 * time.Minute
)

// Server wires the pipeline runner and session storage into a Fiber app.
type Server struct {
	app      *fiber.App
	runner   *flow.Runner
	sessions storage.SessionRepository
	cache    *cache.Cache
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithCacheTTL sets how long idle session histories stay cached in memory.
// Default is 1 hour.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Server) error {
		if ttl > 0 {
			s.cache = cache.New(ttl, cachePurgeInterval)
		}
		return nil
	}
}

// New creates a server over the given pipeline runner and session repository.
func New(runner *flow.Runner, sessions storage.SessionRepository, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, ErrRunnerRequired
	}
	if sessions == nil {
		return nil, ErrSessionRepositoryRequired
	}

	s := &Server{
		runner:   runner,
		sessions: sessions,
		cache:    cache.New(defaultCacheTTL, cachePurgeInterval),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.app = fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB
	})
	s.registerRoutes()

	return s, nil
}

// App returns the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the given address and blocks until shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthcheck", s.handleHealthcheck)
	s.app.Post("/chat", s.handleChat)
}
