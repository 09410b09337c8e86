package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/dshills/docquery-mcp/internal/config"
	"github.com/dshills/docquery-mcp/internal/provider"
	"github.com/dshills/docquery-mcp/internal/query"
)

const (
	// ServerName is the MCP server name
	ServerName = "docquery-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	query    *query.Service
	provider provider.Provider
	logger   *zap.Logger
}

// NewServer creates a new MCP server instance. The provider is
// constructed eagerly so credential problems fail startup; the index
// itself is loaded lazily on the first query.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	prov, err := provider.New(provider.Config{
		Name:       cfg.Provider.Name,
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		EmbedModel: cfg.Provider.EmbedModel,
		ChatModel:  cfg.Provider.ChatModel,
		Timeout:    cfg.Provider.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	svc, err := query.New(cfg, prov, logger)
	if err != nil {
		_ = prov.Close()
		return nil, fmt.Errorf("failed to initialize query service: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		cfg:      cfg,
		query:    svc,
		provider: prov,
		logger:   logger,
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.provider.Close() }()
	s.logger.Info("serving MCP on stdio",
		zap.String("server", ServerName),
		zap.String("version", ServerVersion),
	)
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(queryDocsTool(), s.handleQueryDocs)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
