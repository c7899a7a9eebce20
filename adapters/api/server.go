package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fastfisher/adapters/stats/fisher"
	"fastfisher/internal"
)

// Server exposes the engine over HTTP
type Server struct {
	router     *gin.Engine
	engine     *fisher.Engine
	logger     *internal.Logger
	maxSupport int
}

// DefaultMaxSupport bounds the support walk of a single request table.
const DefaultMaxSupport = 1 << 22

// Option configures a Server
type Option func(*Server)

// WithMaxSupport rejects tables whose fixed-marginal family has more than n
// members. A batch may walk at most batchSupportFactor times n in total.
// Values <= 0 keep DefaultMaxSupport.
func WithMaxSupport(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSupport = n
		}
	}
}

// NewServer builds the router. A nil engine selects fisher.Default and a nil
// logger selects internal.DefaultLogger.
func NewServer(engine *fisher.Engine, logger *internal.Logger, opts ...Option) *Server {
	if engine == nil {
		engine = fisher.Default
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Server{
		router:     gin.New(),
		engine:     engine,
		logger:     logger,
		maxSupport: DefaultMaxSupport,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler for use with http.Server or httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.requestLogger())
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/v1/fisher")
	v1.GET("", s.handleTest)
	v1.POST("/exact", s.handleExact)
	v1.POST("/batch", s.handleBatch)
}

// requestLogger logs one line per request at debug level, or warn for
// client and server errors.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"elapsed", time.Since(start),
		}
		if status >= http.StatusBadRequest {
			s.logger.Warn("request failed", args...)
			return
		}
		s.logger.Debug("request", args...)
	}
}
