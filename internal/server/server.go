// Package server exposes chat and memory management over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/buddy/internal/chat"
	"github.com/rcliao/buddy/internal/memory"
)

const shutdownTimeout = 10 * time.Second

// Config wires the server to its dependencies.
type Config struct {
	Registry *memory.Registry
	Chat     *chat.Service
	// Gatherer serves /metrics. Nil means prometheus.DefaultGatherer.
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
	Logger      *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	registry *memory.Registry
	chat     *chat.Service
	logger   *slog.Logger
	engine   *gin.Engine
}

// New builds the gin engine and registers every route.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog(cfg.Logger))
	engine.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	s := &Server{
		registry: cfg.Registry,
		chat:     cfg.Chat,
		logger:   cfg.Logger.With("component", "server"),
		engine:   engine,
	}

	engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))

	api := engine.Group("/api")
	api.POST("/chat", s.handleChat)

	users := api.Group("/users/:user")
	users.GET("/context", s.handleContext)
	users.POST("/summaries", s.handleSummarize)
	users.GET("/memories", s.handleListMemories)
	users.POST("/memories", s.handleAddMemory)
	users.POST("/memories/retry", s.handleRetry)
	users.GET("/memories/key/:key", s.handleGetByKey)
	users.PATCH("/memories/:id", s.handleUpdateMemory)
	users.DELETE("/memories/:id", s.handleDeleteMemory)

	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	return cfg
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
