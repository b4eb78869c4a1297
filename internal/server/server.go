package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/pipeline"
)

const (
	serviceName = "VC Pitch Deck Analyzer"
	apiVersion  = "1.0.0"

	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Analyzer runs one deck analysis; *pipeline.Pipeline satisfies it
type Analyzer interface {
	Analyze(ctx context.Context, in pipeline.Input) (*model.Analysis, error)
}

// Server is the HTTP API in front of the analysis pipeline
type Server struct {
	analyzer  Analyzer
	timeout   time.Duration
	maxUpload int64
	engine    *gin.Engine
	logger    *zap.Logger
}

// New builds the server and registers its routes
func New(analyzer Analyzer, cfg *model.Config, l *zap.Logger) *Server {
	s := &Server{
		analyzer:  analyzer,
		timeout:   cfg.Server.AnalysisTimeout,
		maxUpload: cfg.PDF.MaxUploadBytes,
		logger:    logger.OrNop(l),
	}
	if s.maxUpload <= 0 {
		s.maxUpload = 50 << 20
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestID())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/", s.root)
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/analyze-pitch-deck", s.analyzePitchDeck)

	s.engine = r
	return s
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestID tags every request with an id and logs it on completion
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		s.logger.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
