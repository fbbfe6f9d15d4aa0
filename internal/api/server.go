// Package api exposes the try-on pipeline over HTTP.
//
// Routes:
//
//	GET  /health            liveness probe
//	POST /api/detect-pose   multipart "photo" → landmark JSON
//	POST /api/virtual-tryon multipart "photo", "garment", optional "garmentType" → PNG
//	GET  /metrics           Prometheus exposition
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/fashun/virtual-tryon/internal/cache"
	"github.com/fashun/virtual-tryon/internal/config"
	"github.com/fashun/virtual-tryon/internal/tryon"
)

// ServiceName is reported by the health check.
const ServiceName = "virtual-tryon"

// RenderCache stores finished try-on renders. *cache.Store implements it.
type RenderCache interface {
	Get(ctx context.Context, key string) (*cache.Entry, error)
	Set(ctx context.Context, key string, entry *cache.Entry) error
}

// Server is the HTTP boundary of the service.
type Server struct {
	cfg      *config.Config
	pipeline *tryon.Pipeline
	cache    RenderCache
	sem      *semaphore.Weighted
	limiter  *rateLimiter
	logger   *zap.Logger
	engine   *gin.Engine
}

// New builds the router. renders may be nil to disable caching.
func New(cfg *config.Config, pipeline *tryon.Pipeline, renders RenderCache, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		cache:    renders,
		sem:      semaphore.NewWeighted(cfg.Pipeline.MaxConcurrent),
		limiter:  newRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		logger:   logger,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery(s.logger))
	r.Use(Logger(s.logger))
	r.Use(Metrics())
	r.Use(CORS(s.cfg.CORS.AllowedOrigins))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(RateLimit(s.limiter, s.logger))
	api.Use(MaxBodySize(s.cfg.Upload.MaxSize))
	{
		api.POST("/detect-pose", s.detectPose)
		api.POST("/virtual-tryon", s.virtualTryOn)
	}

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Port,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// acquire takes a pipeline slot, waiting at most the configured queue
// timeout. On failure it has already written the 503 response.
func (s *Server) acquire(c *gin.Context) bool {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.Pipeline.QueueTimeout)
	defer cancel()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		rejected(c, http.StatusServiceUnavailable, "busy", msgServerBusy)
		s.logger.Warn("pipeline queue timeout",
			zap.String("request_id", requestID(c)),
			zap.Duration("queue_timeout", s.cfg.Pipeline.QueueTimeout),
		)
		return false
	}
	return true
}

func (s *Server) release() {
	s.sem.Release(1)
}
