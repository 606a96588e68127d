package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gestctl/internal/agent"
	"gestctl/internal/app"
	"gestctl/internal/scenarios"
)

var (
	testSuite     string
	testBaseURL   string
	testReportDir string
	testWorkDir   string
	testNoDelay   bool
	testTimeout   time.Duration
	testMCPServer bool
)

// completeSuiteFlag provides shell completion for the suite flag
func completeSuiteFlag(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return scenarios.Names(), cobra.ShellCompDirectiveNoFileComp
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Run a smoke suite against a GestAgent service",
	Long: `The test command runs one smoke suite against a GestAgent service and
prints a scorecard. The process exits 0 when at least 70% of the scenarios
passed and 1 otherwise.

Suites:
- mcp:       capability server actions, workflow chaining, portal download,
             a five-call performance probe and error handling
- real-data: upload a real invoice PDF, find it in the list, check the AI
             extraction and export it to SAGE; writes a JSON report
- verify:    check that one document is visible (same as 'gestctl verify')

Example usage:
  gestctl test                                   # Run the mcp suite
  gestctl test --suite=real-data                 # Run the invoice workflow
  gestctl test --suite=real-data --report-dir=out
  gestctl test --base-url=http://staging:3003    # Point at another service
  gestctl test --mcp-server                      # Run as MCP server (stdio transport)

In MCP Server mode the suites are exposed as MCP tools (list_suites,
run_suite, get_last_result) over stdio, for AI assistants and other MCP
clients. Logs go to stderr in this mode.`,
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringVar(&testSuite, "suite", "mcp", "Suite to run")
	testCmd.Flags().StringVar(&testBaseURL, "base-url", "", "Base URL of the GestAgent service (default from config)")
	testCmd.Flags().StringVar(&testReportDir, "report-dir", "", "Directory for the JSON report (default from config)")
	testCmd.Flags().StringVar(&testWorkDir, "work-dir", "", "Directory for the invoice fixture (default from config)")
	testCmd.Flags().BoolVar(&testNoDelay, "no-delay", false, "Skip the settle pauses between dependent requests")
	testCmd.Flags().DurationVar(&testTimeout, "timeout", 0, "Overall time limit for the suite (0 means none)")

	testCmd.Flags().BoolVar(&testMCPServer, "mcp-server", false, "Run as MCP server (stdio transport)")

	_ = testCmd.RegisterFlagCompletionFunc("suite", completeSuiteFlag)

	testCmd.MarkFlagsMutuallyExclusive("mcp-server", "suite")
	testCmd.MarkFlagsMutuallyExclusive("mcp-server", "timeout")

	testCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if testMCPServer {
			return nil
		}
		if _, err := scenarios.Build(testSuite, scenarios.Options{}); err != nil {
			return err
		}
		if testTimeout < 0 {
			return fmt.Errorf("timeout must not be negative, got %s", testTimeout)
		}
		return nil
	}
}

func testOverrides() app.Overrides {
	return app.Overrides{
		BaseURL:   testBaseURL,
		ReportDir: testReportDir,
		WorkDir:   testWorkDir,
		NoDelay:   testNoDelay,
	}
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if testMCPServer {
		return runTestMCPServer(ctx)
	}

	if testTimeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, testTimeout)
		defer timeoutCancel()
	}

	return runSuite(ctx, cmd.OutOrStdout(), testSuite, testOverrides())
}

func runTestMCPServer(ctx context.Context) error {
	// base-url has no single suite here; run_suite takes its own
	o := testOverrides()
	o.BaseURL = ""
	cfg, err := loadConfig(o, "")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// stdout carries the protocol
	log, err := newLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		return err
	}

	server := agent.NewTestMCPServer(cfg, log)
	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("test MCP server error: %w", err)
	}
	return nil
}
