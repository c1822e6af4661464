package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/indiscore/core"
	"github.com/huangsam/indiscore/core/formula"
	"github.com/huangsam/indiscore/core/numeric"
	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	open    SourceOpener
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleScoreIndicator(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	values := schema.IndicatorValues{
		Loaded:   true,
		Failed:   request.GetBool("failed", false),
		Current:  numeric.Optional(args["current"]),
		Previous: numeric.Optional(args["previous"]),
	}

	script := request.GetString("formula", "")
	result := core.NewScorerFromConfig(h.baseCfg).Recompute(ctx, script, values)
	return jsonResult(result), nil
}

func (h *toolHandler) handleValidateFormula(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	script, err := request.RequireString("formula")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	check := schema.FormulaCheck{Formula: script, Passed: true}
	if !formula.ShouldEvaluate(script) {
		check.Empty = true
	} else if err := formula.Check(script); err != nil {
		check.Passed = false
		check.Error = err.Error()
	}
	return jsonResult(check), nil
}

func (h *toolHandler) handleListFunctions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(formula.Symbols()), nil
}

func (h *toolHandler) handleScoreSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("source", ""); p != "" {
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" && ext != ".csv" {
			return mcp.NewToolResultError(fmt.Sprintf("unsupported source file '%s'. must end in .json, .yaml, .yml, .csv", p)), nil
		}
		cfg.SourceBackend = schema.FileBackend
		cfg.SourcePath = p
	}
	if (cfg.SourceBackend == "" || cfg.SourceBackend == schema.FileBackend) && cfg.SourcePath == "" {
		return mcp.NewToolResultError("no source configured: pass a source file"), nil
	}

	src, err := h.open(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open source: %v", err)), nil
	}
	defer func() { _ = src.Close() }()

	results, _, err := core.GetBatchResults(ctx, cfg, src)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	if state := schema.State(request.GetString("state", "")); state != "" {
		filtered := make([]schema.IndicatorResult, 0, len(results))
		for _, r := range results {
			if r.State == state {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	return jsonResult(results), nil
}
