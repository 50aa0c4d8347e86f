package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"param-server/src/interfaces"
	"param-server/src/logger"
	"param-server/src/metrics"
	"param-server/src/models"

	"github.com/gin-gonic/gin"
)

// recentEvents is how many served events the hub keeps for new subscribers.
const recentEvents = 32

// -----------------------------------------------------------------------------
// AdminServer
// -----------------------------------------------------------------------------

type AdminServer struct {
	Config    *models.MConfig
	Estimator interfaces.IParameterEstimator
	Metrics   *metrics.Collector
	Logger    *logger.Logger
	engine    *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan models.MServedEvent
	register   chan *Client
	unregister chan *Client
	hubDone    chan struct{}

	// Feed history
	recent     []models.MServedEvent
	stateMutex sync.RWMutex
	served     atomic.Int64
	dropped    atomic.Int64
	started    time.Time
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAdminServer(cfg *models.MConfig, est interfaces.IParameterEstimator, m *metrics.Collector, logger *logger.Logger) *AdminServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &AdminServer{
		Config:    cfg,
		Estimator: est,
		Metrics:   m,
		Logger:    logger,
		engine:    gin.New(),
		clients:   make(map[*Client]struct{}),
		// Buffered so Publish never waits on the hub
		broadcast:  make(chan models.MServedEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		hubDone:    make(chan struct{}),
		started:    time.Now(),
	}

	s.engine.Use(gin.Recovery())
	if cfg.LogLevel == "DEBUG" {
		s.engine.Use(gin.Logger())
	}

	// Local dashboards only
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *AdminServer) setupRoutes() {
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/params/:symbol", s.getParams)
	s.engine.GET("/api/events", s.getEvents)
	s.engine.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------

// Handler exposes the routes, mostly for tests.
func (s *AdminServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start serves until ctx is done, then shuts down gracefully.
func (s *AdminServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Config.Admin.Host, s.Config.Admin.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.handleWebsockets(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting admin server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.Logger.Info("Admin server stopped")
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *AdminServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	var latest int64
	if n := len(s.recent); n > 0 {
		latest = s.recent[n-1].Timestamp
	}
	s.stateMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"provider":       s.Config.DataSource.Provider,
		"served":         s.served.Load(),
		"feed_dropped":   s.dropped.Load(),
		"latest_update":  latest,
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

// -----------------------------------------------------------------------------

func (s *AdminServer) getConfig(c *gin.Context) {
	// DSN and proxies stay private
	c.JSON(http.StatusOK, gin.H{
		"name":                  s.Config.Name,
		"host":                  s.Config.Host,
		"port":                  s.Config.Port,
		"default_years":         s.Config.DefaultYears,
		"read_buffer_bytes":     s.Config.ReadBufferBytes,
		"read_timeout_seconds":  s.Config.ReadTimeoutSeconds,
		"fetch_timeout_seconds": s.Config.FetchTimeoutSeconds,
		"max_connections":       s.Config.MaxConnections,
		"provider":              s.Config.DataSource.Provider,
		"min_prices":            s.Config.DataSource.MinPrices,
	})
}

// -----------------------------------------------------------------------------

func (s *AdminServer) getParams(c *gin.Context) {
	var q paramsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.Metrics.ObserveRequest("http", badQuery(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	symbol := strings.ToUpper(c.Param("symbol"))
	years := q.Years
	if years == 0 {
		years = s.Config.DefaultYears
	}

	params, err := s.Estimator.Estimate(c.Request.Context(), symbol, years)
	s.Metrics.ObserveRequest("http", err)
	if err != nil {
		status, msg := errorResponse(err)
		c.JSON(status, gin.H{"error": msg, "category": categoryOf(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"years":  years,
		"mu":     params.Mu,
		"sigma":  params.Sigma,
		"s0":     params.S0,
	})
}

// -----------------------------------------------------------------------------

func (s *AdminServer) getEvents(c *gin.Context) {
	c.JSON(http.StatusOK, s.recentSnapshot())
}
