package agent

import (
	"context"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"gestctl/internal/app"
	"gestctl/internal/config"
	"gestctl/internal/scenarios"
)

// TestMCPServer serves the smoke suites over the MCP stdio transport.
type TestMCPServer struct {
	cfg     config.GestctlConfig
	appOpts []app.Option
	log     logrus.FieldLogger
	server  *server.MCPServer

	mu         sync.Mutex
	lastResult *RunSummary
}

// NewTestMCPServer creates the server and registers its tools. appOpts are
// passed to the application built for every run.
func NewTestMCPServer(cfg config.GestctlConfig, log logrus.FieldLogger, appOpts ...app.Option) *TestMCPServer {
	t := &TestMCPServer{
		cfg:     cfg,
		appOpts: appOpts,
		log:     log.WithField("component", "agent"),
		server: server.NewMCPServer(
			"gestctl",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
	}
	t.registerTools()
	return t
}

func (t *TestMCPServer) registerTools() {
	t.server.AddTool(
		mcp.NewTool("list_suites",
			mcp.WithDescription("List the GestAgent smoke suites"),
		),
		t.handleListSuites,
	)

	t.server.AddTool(
		mcp.NewTool("run_suite",
			mcp.WithDescription("Run a GestAgent smoke suite and return its scorecard"),
			mcp.WithString("suite",
				mcp.Required(),
				mcp.Description("Suite to run"),
				mcp.Enum(scenarios.Names()...),
			),
			mcp.WithString("base_url",
				mcp.Description("Base URL of the GestAgent service (defaults to the configured one)"),
			),
			mcp.WithString("format",
				mcp.Description("Result format: text (log and scorecard) or json (summary)"),
				mcp.Enum("text", "json"),
			),
		),
		t.handleRunSuite,
	)

	t.server.AddTool(
		mcp.NewTool("get_last_result",
			mcp.WithDescription("Return the summary of the most recent suite run"),
		),
		t.handleGetLastResult,
	)
}

// Start serves requests on stdin/stdout until ctx is done or stdin closes.
func (t *TestMCPServer) Start(ctx context.Context) error {
	t.log.Info("Starting gestctl MCP server (stdio transport)")
	return server.NewStdioServer(t.server).Listen(ctx, os.Stdin, os.Stdout)
}
