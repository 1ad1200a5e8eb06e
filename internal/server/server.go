// Package server provides the HTTP API for metamuse.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/metamuse/internal/config"
	"github.com/hyperjump/metamuse/internal/metadata"
	"go.uber.org/zap"
)

// Extractor recovers text from uploaded document bytes.
type Extractor interface {
	ExtractBytes(ctx context.Context, content []byte, ext string) (string, error)
}

// Generator infers a metadata record from text.
type Generator interface {
	Generate(ctx context.Context, raw string) metadata.Record
}

// WatchService manages drop-folder directories at runtime.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, processExisting bool) error
	RemoveDirectory(path string) error
}

// Server is the HTTP server for the metamuse API.
type Server struct {
	extractor Extractor
	generator Generator
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server

	watch         WatchService
	configPath    string
	watchConfig   *config.Config
	watchConfigMu sync.Mutex
}

// NewServer creates a server with the given dependencies. watch may be nil,
// which disables the watch endpoints. When configPath and fullConfig are set,
// directory changes are persisted to the config file.
func NewServer(
	extractor Extractor,
	generator Generator,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	watch WatchService,
	configPath string,
	fullConfig *config.Config,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		extractor:   extractor,
		generator:   generator,
		config:      cfg,
		logger:      logger,
		watch:       watch,
		configPath:  configPath,
		watchConfig: fullConfig,
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/metadata", s.handleMetadata)
	r.Get("/api/v1/watch/directories", s.handleWatchDirectoriesList)
	r.Post("/api/v1/watch/directories", s.handleWatchDirectoriesAdd)
	r.Delete("/api/v1/watch/directories", s.handleWatchDirectoriesRemove)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
