package app

import (
	"gestctl/internal/config"
	"gestctl/internal/scenarios"
)

// Overrides holds the command-line settings layered on top of the loaded
// configuration. Empty fields keep the configured value.
type Overrides struct {
	LogLevel   string
	BaseURL    string // applies to the suite being run
	ReportDir  string
	DocumentID string
	WorkDir    string
	// NoDelay switches off the settle pauses between dependent requests
	NoDelay bool
}

// Apply returns cfg with the overrides for the named suite applied.
func (o Overrides) Apply(cfg config.GestctlConfig, suite string) config.GestctlConfig {
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.ReportDir != "" {
		cfg.Report.Dir = o.ReportDir
	}
	if o.DocumentID != "" {
		cfg.Suites.Verify.DocumentID = o.DocumentID
	}
	if o.WorkDir != "" {
		cfg.Suites.RealData.WorkDir = o.WorkDir
	}
	if o.NoDelay {
		cfg.Suites.MCP.StatusDelay = 0
		cfg.Suites.RealData.IndexDelay = 0
	}

	if o.BaseURL != "" {
		switch suite {
		case "mcp":
			cfg.Suites.MCP.BaseURL = o.BaseURL
		case "real-data":
			cfg.Suites.RealData.BaseURL = o.BaseURL
		case "verify":
			cfg.Suites.Verify.BaseURL = o.BaseURL
		}
	}

	return cfg
}

// SuiteOptions maps the configuration onto the scenario options.
func SuiteOptions(cfg config.GestctlConfig) scenarios.Options {
	return scenarios.Options{
		MCP: scenarios.MCPOptions{
			StatusDelay: cfg.Suites.MCP.StatusDelay,
		},
		RealData: scenarios.RealDataOptions{
			WorkDir:      cfg.Suites.RealData.WorkDir,
			IndexDelay:   cfg.Suites.RealData.IndexDelay,
			DocumentType: cfg.Suites.RealData.DocumentType,
		},
		Verify: scenarios.VerifyOptions{
			DocumentID: cfg.Suites.Verify.DocumentID,
		},
	}
}

// SuiteBaseURL returns the configured base URL of a suite, falling back to
// the suite's built-in default.
func SuiteBaseURL(cfg config.GestctlConfig, suite string) string {
	var url string
	switch suite {
	case "mcp":
		url = cfg.Suites.MCP.BaseURL
	case "real-data":
		url = cfg.Suites.RealData.BaseURL
	case "verify":
		url = cfg.Suites.Verify.BaseURL
	}
	if url == "" {
		return scenarios.DefaultURL(suite)
	}
	return url
}
