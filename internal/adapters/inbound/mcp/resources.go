package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/forcekit/forcekit/internal/adapters/outbound/config"
	"github.com/forcekit/forcekit/internal/adapters/outbound/history"
	"github.com/forcekit/forcekit/internal/application"
)

// registerResources registers all forcekit MCP resources on the given
// server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. forcekit://history - recorded validation outcomes
	s.AddResource(
		mcplib.NewResource(
			"forcekit://history",
			"Validation History",
			mcplib.WithResourceDescription("Recorded validation outcomes for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(projectPath),
	)

	// 2. forcekit://config - effective project configuration
	s.AddResource(
		mcplib.NewResource(
			"forcekit://config",
			"Project Configuration",
			mcplib.WithResourceDescription("Effective .forcekit.yaml configuration, defaults applied"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath),
	)
}

func handleHistoryResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		svc := application.NewHistoryService(history.New())
		entries, err := svc.Entries(projectPath, 0)
		if err != nil {
			return nil, err
		}

		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling history: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "forcekit://history",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func handleConfigResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := config.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      "forcekit://config",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
