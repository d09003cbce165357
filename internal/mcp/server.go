// Package mcp exposes the index and repository pipeline as MCP tools over
// the stdio transport (github.com/modelcontextprotocol/go-sdk/mcp).
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/javadexlabs/javadex/internal/indexer"
	"github.com/javadexlabs/javadex/internal/ingest"
	"github.com/javadexlabs/javadex/internal/repository"
)

// Server serves Java API queries as MCP tools.
type Server struct {
	mcp      *mcp.Server
	index    *indexer.Index
	engine   *indexer.QueryEngine
	manager  *repository.Manager
	pipeline *ingest.Pipeline
	metrics  *Metrics
	logger   *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "javadex").
	Name string

	// Version is the server version (default: "dev").
	Version string

	// Logger for structured logging.
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "javadex",
		Version: "dev",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates an MCP server over the given index and pipeline.
func NewServer(
	cfg *Config,
	index *indexer.Index,
	manager *repository.Manager,
	pipeline *ingest.Pipeline,
) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if index == nil {
		return nil, fmt.Errorf("index is required")
	}
	if manager == nil {
		return nil, fmt.Errorf("repository manager is required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("ingest pipeline is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:      mcpServer,
		index:    index,
		engine:   indexer.NewQueryEngine(index, cfg.Logger),
		manager:  manager,
		pipeline: pipeline,
		metrics:  NewMetrics(cfg.Logger),
		logger:   cfg.Logger,
	}
	s.registerTools()
	return s, nil
}

// Run starts the MCP server on the stdio transport and blocks until the
// context is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	transport := &mcp.StdioTransport{}
	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}
