// Package api exposes the stored corpus and pipeline state over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
	"github.com/Atlas-Final-Project/data-crawling/internal/ingest"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
	"github.com/Atlas-Final-Project/data-crawling/internal/ratelimit"
	"github.com/Atlas-Final-Project/data-crawling/internal/storage"
)

const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// ArticleReader is the read side of the article store.
type ArticleReader interface {
	FindMany(ctx context.Context, q storage.Query) ([]domain.Article, error)
	Stats(ctx context.Context) (storage.Stats, error)
	Ping(ctx context.Context) error
}

// CycleRunner triggers one ingestion cycle on demand.
type CycleRunner interface {
	Run(ctx context.Context) (*ingest.CycleSummary, error)
}

// Params bundles the server's collaborators.
type Params struct {
	Address string
	Store   ArticleReader
	Runner  CycleRunner
	// Limiter exposes per-source rate-limit state; optional.
	Limiter *ratelimit.Limiter
	// SourceNames drives the rate-limit listing.
	SourceNames []string
	Logger      logger.Interface
	Debug       bool
}

// Server is the HTTP read API with lifecycle management.
type Server struct {
	params Params
	router *gin.Engine
	server *http.Server
	log    logger.Interface
}

// NewServer builds the server and installs its routes.
func NewServer(p Params) *Server {
	if p.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		params: p,
		router: gin.New(),
		log:    p.Logger.WithComponent("api"),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         p.Address,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}
	return s
}

// Router returns the underlying engine, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.GET("/articles", s.handleListArticles)
	v1.GET("/stats", s.handleStats)
	v1.GET("/ratelimits", s.handleRateLimits)
	v1.POST("/cycles", s.handleTriggerCycle)
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http server listening", "address", s.params.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
