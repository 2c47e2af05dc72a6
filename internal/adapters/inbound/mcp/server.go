package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with all forcekit tools and resources
// registered. The projectPath anchors config, history and relative
// artifact paths.
func NewServer(projectPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"forcekit",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath)
	registerResources(s, projectPath)

	return s
}
