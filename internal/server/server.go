// Package server exposes the assistant's tools over the Model Context
// Protocol.
package server

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rahul2317-NRK/chatbot9/internal/tools"
)

// Name is the implementation name announced to MCP clients.
const Name = "real-estate-assistant"

// Server wraps the MCP server with the tool executor.
type Server struct {
	mcp    *mcp.Server
	logger *slog.Logger
}

// New creates an MCP server exposing every tool. Calls run as callerID for
// policy checks.
func New(version string, exec *tools.Executor, callerID string, logger *slog.Logger) *Server {
	s := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)
	s.AddReceivingMiddleware(LoggingMiddleware(logger), CallerMiddleware(callerID))
	tools.RegisterAll(s, exec)
	return &Server{mcp: s, logger: logger}
}

// Run serves on stdio until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}
