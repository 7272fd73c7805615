package api

import (
	"context"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/saorihq/saori/api/ask"
	"github.com/saorihq/saori/pkg/corpus"
)

// Engine is the slice of the answer engine the API server depends on.
// The concrete *engine.Engine satisfies it; tests substitute stubs.
type Engine interface {
	ask.Engine
	ReprocessAll(ctx context.Context) error
	Documents(ctx context.Context) ([]corpus.Document, error)
	Remove(ctx context.Context, id string) error
}

// Server is the API server for querying and managing the saori corpus
type Server struct {
	config Config
	engine Engine
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The engine is injected to allow sharing with other components
// (e.g., the directory watcher running in the same process).
func NewServer(config Config, eng Engine, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		engine: eng,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/answer", s.handleAnswer)
	app.Post("/v1/reprocess", s.handleReprocess)
	app.Get("/v1/documents", s.handleListDocuments)
	app.Delete("/v1/documents/:id", s.handleRemoveDocument)

	return s
}

// MountMCP mounts the MCP streamable HTTP handler at /mcp.
func (s *Server) MountMCP(handler http.Handler) {
	s.app.All("/mcp", adaptor.HTTPHandler(handler))
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
