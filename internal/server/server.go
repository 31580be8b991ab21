// Package server exposes grading over a local HTTP API for the editor
// integration.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Yates-Labs/compujudge/internal/grade"
	"github.com/Yates-Labs/compujudge/internal/orchestrator"
	"github.com/Yates-Labs/compujudge/internal/store"
)

// Grader runs one grading request. *orchestrator.Orchestrator satisfies it.
type Grader interface {
	Grade(ctx context.Context, req orchestrator.GradeRequest) (*grade.GradeResult, error)
}

// Diagnostician runs the single-call diagnostics. Graders that also
// implement it get the /v1/quick-scan and /v1/meta routes.
type Diagnostician interface {
	QuickScan(ctx context.Context, req orchestrator.GradeRequest) (*grade.LightGrade, error)
	MetaAnalysis(ctx context.Context, req orchestrator.GradeRequest) (*grade.MetaAnalysis, error)
}

var (
	_ Grader        = (*orchestrator.Orchestrator)(nil)
	_ Diagnostician = (*orchestrator.Orchestrator)(nil)
)

type Config struct {
	Addr         string
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Gatherer backs GET /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
}

// DefaultConfig listens on loopback. Grading runs can take minutes, so the
// write timeout is generous.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:8420",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
	}
}

type Server struct {
	grader     Grader
	store      store.Store
	engine     *gin.Engine
	httpServer *http.Server
	started    time.Time
}

// New wires the routes. st may be nil, in which case nothing is persisted
// and the results routes answer 503.
func New(grader Grader, st store.Store, config Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	s := &Server{
		grader:  grader,
		store:   st,
		engine:  engine,
		started: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:         config.Addr,
		Handler:      engine,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	s.setupRoutes(config.Gatherer)
	return s
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	v1 := s.engine.Group("/v1")
	{
		v1.GET("/health", s.handleHealth)
		v1.GET("/status", s.handleStatus)
		v1.POST("/grade", s.handleGrade)
		v1.POST("/quick-scan", s.handleQuickScan)
		v1.POST("/meta", s.handleMeta)
		v1.GET("/results", s.handleGetResult)
		v1.DELETE("/results", s.handlePurge)
	}
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("[Server] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
