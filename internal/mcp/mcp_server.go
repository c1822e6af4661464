// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/internal/source"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SourceOpener opens the values source described by a config.
type SourceOpener func(cfg *contract.Config) (contract.ValuesSource, error)

// NewMCPServer initializes and configures the indiscore MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, open SourceOpener) *server.MCPServer {
	s := server.NewMCPServer(
		"Indicator Scoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	if open == nil {
		open = source.New
	}
	h := &toolHandler{
		baseCfg: baseCfg,
		open:    open,
	}

	s.AddTool(mcp.NewTool("score_indicator",
		mcp.WithDescription("Score one indicator: compute the ratio between current and previous values and evaluate an optional scoring formula."),
		mcp.WithString("formula", mcp.Description("Scoring formula. Scripts see c (current), p (previous), r (ratio as a fraction), the math library and interpolation. Leave empty to only compute the ratio.")),
		mcp.WithString("current", mcp.Description("Current value as a decimal string (omit when absent).")),
		mcp.WithString("previous", mcp.Description("Previous value as a decimal string (omit when absent).")),
		mcp.WithBoolean("failed", mcp.Description("Mark the upstream load as failed.")),
	), h.handleScoreIndicator)

	s.AddTool(mcp.NewTool("validate_formula",
		mcp.WithDescription("Compile a scoring formula without running it and report syntax or name errors."),
		mcp.WithString("formula", mcp.Description("Scoring formula to validate."), mcp.Required()),
	), h.handleValidateFormula)

	s.AddTool(mcp.NewTool("list_functions",
		mcp.WithDescription("List every variable, constant and function a scoring formula can use."),
	), h.handleListFunctions)

	s.AddTool(mcp.NewTool("score_source",
		mcp.WithDescription("Score every indicator in the configured source, or in a JSON, YAML or CSV file."),
		mcp.WithString("source", mcp.Description("Path to a .json, .yaml, .yml or .csv file (defaults to the configured source).")),
		mcp.WithString("state", mcp.Description("Only return indicators in this state."), mcp.Enum("not_loaded", "load_failed", "calculated", "calculate_failed")),
	), h.handleScoreSource)

	return s
}

// StartMCPServer starts the indiscore MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config) error {
	s := NewMCPServer(baseCfg, source.New)
	return server.ServeStdio(s)
}
