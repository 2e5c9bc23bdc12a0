// Package web serves the search page and the JSON API over gin.
package web

import (
	"context"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/UB-Mannheim/maidisco/internal/relay"
	"github.com/UB-Mannheim/maidisco/library/catalog"
	"github.com/UB-Mannheim/maidisco/library/log"
)

// Searcher runs the relay pipeline.
type Searcher interface {
	Search(ctx context.Context, req relay.SearchRequest) (*relay.Outcome, error)
	Backend() catalog.Backend
}

// Server holds the gin engine and everything its handlers need.
type Server struct {
	engine         *gin.Engine
	searcher       Searcher
	page           *template.Template
	allowedOrigins []string
	mcpHandler     http.Handler
	logger         logSDK.Logger
	metrics        bool
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins sets the origins allowed by CORS. An entry starting
// with "." matches every subdomain, "*" matches everything.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = append(s.allowedOrigins, origins...)
	}
}

// WithMCPHandler mounts an MCP streamable HTTP handler under /mcp.
func WithMCPHandler(h http.Handler) Option {
	return func(s *Server) {
		s.mcpHandler = h
	}
}

// WithMetrics enables the gin-middlewares metric endpoints.
func WithMetrics(enable bool) Option {
	return func(s *Server) {
		s.metrics = enable
	}
}

// WithLogger sets the server logger; gin request logs are named under it.
func WithLogger(logger logSDK.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer registers all routes on a fresh gin engine.
func NewServer(searcher Searcher, opts ...Option) (*Server, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}

	page, err := parsePage()
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine:   gin.New(),
		searcher: searcher,
		page:     page,
		logger:   log.Logger.Named("web"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(s.logger.Level().String()),
			gmw.WithLogger(s.logger.Named("gin")),
		),
		s.allowCORS,
	)

	if s.metrics {
		if err := gmw.EnableMetric(s.engine); err != nil {
			return nil, errors.Wrap(err, "enable metric server")
		}
	}

	s.engine.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})
	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/search", s.handleSearchForm)
	s.engine.POST("/api/search", s.handleSearchAPI)
	if s.mcpHandler != nil {
		s.engine.Any("/mcp", gin.WrapH(s.mcpHandler))
	}

	return s, nil
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Run blocks serving addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("listening on http", zap.String("addr", addr))
	return errors.Wrap(s.engine.Run(addr), "http server exit")
}

func (s *Server) originAllowed(origin string) bool {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())

	for _, allowed := range s.allowedOrigins {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		switch {
		case allowed == "":
		case allowed == "*":
			return true
		case strings.HasPrefix(allowed, "."):
			if strings.HasSuffix(host, allowed) || host == strings.TrimPrefix(allowed, ".") {
				return true
			}
		case strings.Contains(allowed, "://"):
			if strings.EqualFold(strings.TrimSuffix(origin, "/"), strings.TrimSuffix(allowed, "/")) {
				return true
			}
		case host == allowed:
			return true
		}
	}
	return false
}

func (s *Server) allowCORS(ctx *gin.Context) {
	origin := ctx.Request.Header.Get("Origin")

	if origin != "" && s.originAllowed(origin) {
		ctx.Header("Access-Control-Allow-Origin", origin)
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS, HEAD")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Mcp-Session-Id")
		ctx.Header("Access-Control-Max-Age", "86400")
		ctx.Header("Vary", "Origin")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
	} else if origin != "" && ctx.Request.Method == http.MethodOptions {
		// preflight from a disallowed origin
		ctx.AbortWithStatus(http.StatusForbidden)
		return
	}

	ctx.Next()
}
