package mcpserver

import (
	"errors"

	"github.com/mark3labs/mcp-go/server"

	"netops_helper/internal/socketmode"
)

// NewServer creates a new MCP server exposing the slash commands as tools
func NewServer(handler socketmode.CommandHandler, commands []string) (*server.MCPServer, error) {
	if handler == nil {
		return nil, errors.New("command handler is required")
	}

	// Create MCP server
	s := server.NewMCPServer(
		"netops helper",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	// Add command tools
	if err := registerCommandTools(s, handler, commands); err != nil {
		return nil, err
	}

	return s, nil
}

// Serve starts the MCP server on stdio
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
