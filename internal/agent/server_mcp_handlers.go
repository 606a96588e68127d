package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"gestctl/internal/app"
	"gestctl/internal/scenarios"
	"gestctl/internal/smoketest"
	"gestctl/pkg/logging"
)

// RunSummary is the JSON form of a suite run.
type RunSummary struct {
	Suite          string               `json:"suite"`
	BaseURL        string               `json:"base_url"`
	Passed         int                  `json:"passed"`
	Total          int                  `json:"total"`
	Percentage     float64              `json:"percentage"`
	Grade          smoketest.Grade      `json:"grade"`
	ExitCode       int                  `json:"exit_code"`
	Scorecard      *smoketest.Scorecard `json:"scorecard"`
	Documents      []string             `json:"documents"`
	ReportPath     string               `json:"report_path,omitempty"`
	ReportLocation string               `json:"report_location,omitempty"`
}

func summarize(outcome *app.Outcome) *RunSummary {
	card := outcome.Result.Scorecard
	docs := outcome.Result.Documents
	if docs == nil {
		docs = []string{}
	}
	return &RunSummary{
		Suite:          outcome.Result.Suite,
		BaseURL:        outcome.Result.BaseURL,
		Passed:         card.Passed(),
		Total:          card.Total(),
		Percentage:     card.Percentage(),
		Grade:          card.Grade(),
		ExitCode:       card.ExitCode(),
		Scorecard:      card,
		Documents:      docs,
		ReportPath:     outcome.ReportPath,
		ReportLocation: outcome.ReportLocation,
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleListSuites handles the list_suites MCP tool
func (t *TestMCPServer) handleListSuites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos := scenarios.List()
	for i := range infos {
		infos[i].DefaultURL = app.SuiteBaseURL(t.cfg, infos[i].Name)
	}
	return jsonResult(infos)
}

// handleRunSuite handles the run_suite MCP tool
func (t *TestMCPServer) handleRunSuite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, _ := args["suite"].(string)
	if name == "" {
		return mcp.NewToolResultError("suite is required"), nil
	}
	if _, err := scenarios.Build(name, scenarios.Options{}); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	format := "text"
	if f, ok := args["format"].(string); ok && f != "" {
		if f != "text" && f != "json" {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid format '%s', must be 'text' or 'json'", f)), nil
		}
		format = f
	}

	var overrides app.Overrides
	if url, ok := args["base_url"].(string); ok {
		overrides.BaseURL = url
	}

	a, err := app.NewApplication(overrides.Apply(t.cfg, name), t.log, t.appOpts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to prepare run: %v", err)), nil
	}

	level, err := logging.ParseLevel(t.cfg.LogLevel)
	if err != nil {
		level = logging.LevelInfo
	}
	var buf bytes.Buffer

	t.log.WithField("suite", name).Info("Running suite")
	outcome, err := a.RunSuite(ctx, name, logging.New(level, &buf))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Suite execution failed: %v", err)), nil
	}

	summary := summarize(outcome)
	t.mu.Lock()
	t.lastResult = summary
	t.mu.Unlock()

	if format == "json" {
		return jsonResult(summary)
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// handleGetLastResult handles the get_last_result MCP tool
func (t *TestMCPServer) handleGetLastResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	last := t.lastResult
	t.mu.Unlock()

	if last == nil {
		return mcp.NewToolResultText("No suite has run yet"), nil
	}
	return jsonResult(last)
}
