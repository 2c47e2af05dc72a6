package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/forcekit/forcekit/internal/adapters/outbound/config"
	"github.com/forcekit/forcekit/internal/adapters/outbound/gitinfo"
	"github.com/forcekit/forcekit/internal/adapters/outbound/history"
	"github.com/forcekit/forcekit/internal/adapters/outbound/orgquery"
	"github.com/forcekit/forcekit/internal/adapters/outbound/scanner"
	"github.com/forcekit/forcekit/internal/application"
	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/domain/debuglog"
	"github.com/forcekit/forcekit/internal/domain/testresults"
)

// registerTools registers all forcekit MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string) {
	// 1. validate_apex
	s.AddTool(
		mcplib.NewTool("validate_apex",
			mcplib.WithDescription("Score an Apex class or trigger against best-practice rules. Returns the full validation report as JSON."),
			mcplib.WithString("file",
				mcplib.Required(),
				mcplib.Description("Path to the .cls or .trigger file"),
			),
		),
		handleValidate(projectPath, domain.KindApex),
	)

	// 2. validate_flow
	s.AddTool(
		mcplib.NewTool("validate_flow",
			mcplib.WithDescription("Score Flow metadata XML against best-practice rules. Returns the full validation report as JSON."),
			mcplib.WithString("file",
				mcplib.Required(),
				mcplib.Description("Path to the .flow-meta.xml file"),
			),
		),
		handleValidate(projectPath, domain.KindFlow),
	)

	// 3. validate_soql
	s.AddTool(
		mcplib.NewTool("validate_soql",
			mcplib.WithDescription("Score a SOQL file or anonymous Apex script. Returns the full validation report as JSON."),
			mcplib.WithString("file",
				mcplib.Required(),
				mcplib.Description("Path to the .soql or .apex file"),
			),
		),
		handleValidate(projectPath, domain.KindSOQL, domain.KindAnonApex),
	)

	// 4. parse_debug_log
	s.AddTool(
		mcplib.NewTool("parse_debug_log",
			mcplib.WithDescription("Parse Apex debug log text into limit usage, loop-contained operations and exceptions"),
			mcplib.WithString("log",
				mcplib.Required(),
				mcplib.Description("Raw debug log text"),
			),
		),
		handleParseLog(projectPath),
	)

	// 5. parse_test_results
	s.AddTool(
		mcplib.NewTool("parse_test_results",
			mcplib.WithDescription("Parse sf apex test output into a summary with classified failures and coverage gaps"),
			mcplib.WithString("output",
				mcplib.Required(),
				mcplib.Description("Test run output, JSON or human-readable"),
			),
		),
		handleParseTests(),
	)

	// 6. query_plan
	s.AddTool(
		mcplib.NewTool("query_plan",
			mcplib.WithDescription("Ask the connected org for the execution plan of a SOQL query"),
			mcplib.WithString("query",
				mcplib.Required(),
				mcplib.Description("SOQL query text"),
			),
		),
		handleQueryPlan(projectPath),
	)
}

// newValidateService wires the validate service the same way the CLI
// does; each tool call is self-contained.
func newValidateService(projectPath string) (*application.ValidateService, domain.Config, error) {
	cfg, err := config.New().Load(projectPath)
	if err != nil {
		return nil, domain.Config{}, fmt.Errorf("loading config: %w", err)
	}
	svc := application.NewValidateService(
		cfg,
		scanner.New(cfg.Scan),
		orgquery.New(cfg.Plan),
		history.New(),
		gitinfo.New(),
	)
	return svc, cfg, nil
}

func handleValidate(projectPath string, kinds ...domain.ArtifactKind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		file, err := request.RequireString("file")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(projectPath, file)
		}

		kind := domain.DetectKind(file)
		if !kindAllowed(kind, kinds) {
			return errorResult(fmt.Sprintf("%s is not a %v artifact", filepath.Base(file), kinds[0])), nil
		}

		svc, _, err := newValidateService(projectPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		report, err := svc.Validate(ctx, projectPath, file)
		if err != nil {
			return errorResult(fmt.Sprintf("validation failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func kindAllowed(kind domain.ArtifactKind, kinds []domain.ArtifactKind) bool {
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

func handleParseLog(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		log, err := request.RequireString("log")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if !debuglog.LooksLikeLog(log) {
			return errorResult("input does not look like an Apex debug log"), nil
		}

		cfg, err := config.New().Load(projectPath)
		if err != nil {
			cfg = domain.DefaultConfig()
		}
		return jsonResult(debuglog.Parse(log, cfg))
	}
}

func handleParseTests() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		output, err := request.RequireString("output")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(testresults.Parse(output))
	}
}

func handleQueryPlan(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		cfg, err := config.New().Load(projectPath)
		if err != nil {
			cfg = domain.DefaultConfig()
		}
		svc := application.NewPlanService(orgquery.New(cfg.Plan))
		outcome, err := svc.Explain(ctx, query)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(outcome)
	}
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
