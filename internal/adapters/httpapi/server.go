// Package httpapi exposes the application over HTTP. It is a driving
// adapter: handlers translate requests into primary-port calls and map
// pipeline errors onto status codes, and nothing else.
package httpapi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ananmuhameed/therapy-ai-platform/internal/config"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
)

// Server wraps the gin engine with graceful shutdown.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	cfg    config.Config
}

// NewServer builds the HTTP server around the primary ports.
func NewServer(cfg config.Config, ingest primary.IngestService, reads primary.SessionReadService, logger *log.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(logger))
	engine.Use(MaxBodySize(cfg.MaxUploadBytes))
	engine.Use(CORS())

	api := newAPI(cfg, ingest, reads)
	registerRoutes(engine, api)

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Port),
			Handler: engine,
		},
		cfg: cfg,
	}
}

// Run serves until ListenAndServe returns.
func (s *Server) Run() error {
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests with a bounded grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
