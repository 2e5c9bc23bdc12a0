// Package mcp exposes the relay as a Model Context Protocol tool server.
package mcp

import (
	"net/http"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/UB-Mannheim/maidisco/internal/mcp/tools"
	"github.com/UB-Mannheim/maidisco/library/log"
)

const (
	serverName    = "maidisco"
	serverVersion = "1.0.0"
)

// Server wraps the MCP server state for the HTTP transport.
type Server struct {
	handler http.Handler
	logger  logSDK.Logger
}

// NewServer constructs a streamable HTTP MCP server with the catalog_search tool.
func NewServer(searcher tools.Searcher, logger logSDK.Logger) (*Server, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if logger == nil {
		logger = log.Logger
	}
	logger = logger.Named("mcp")

	mcpServer := srv.NewMCPServer(
		serverName,
		serverVersion,
		srv.WithToolCapabilities(true),
		srv.WithInstructions("Use the catalog_search tool to search the "+
			searcher.Backend().DisplayName()+" library catalog in natural language."),
		srv.WithRecovery(),
		srv.WithHooks(newMCPHooks(logger.Named("hooks"))),
	)

	catalogSearch, err := tools.NewCatalogSearchTool(searcher, logger.Named("catalog_search"))
	if err != nil {
		return nil, errors.Wrap(err, "new catalog_search tool")
	}
	registerTools(mcpServer, catalogSearch)

	return &Server{
		handler: withHTTPLogging(srv.NewStreamableHTTPServer(mcpServer), logger.Named("http")),
		logger:  logger,
	}, nil
}

func registerTools(s *srv.MCPServer, list ...tools.Tool) {
	for _, t := range list {
		s.AddTool(t.Definition(), t.Handle)
	}
}

// Handler returns the HTTP handler that should be mounted to serve MCP traffic.
func (s *Server) Handler() http.Handler {
	return s.handler
}
