// Package agent exposes the smoke suites as MCP tools over stdio so that an
// AI assistant or any MCP client can list and run them.
//
// Tools:
//
//   - list_suites: the available suites with their default base URLs
//   - run_suite: runs one suite and returns its log and scorecard, or a JSON
//     summary when format is "json"
//   - get_last_result: the JSON summary of the most recent run
//
// Example usage:
//
//	srv := agent.NewTestMCPServer(cfg, logger)
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Nothing may be written to stdout while the server runs; pass a logger that
// writes to stderr.
package agent
