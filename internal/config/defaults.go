package config

import (
	"gestctl/internal/scenarios"
)

// GetDefaultConfig returns the built-in configuration every layer starts from.
// Suite values come from the scenarios package so both stay in step.
func GetDefaultConfig() GestctlConfig {
	return GestctlConfig{
		LogLevel: "info",
		Suites: SuitesConfig{
			MCP: MCPSuiteConfig{
				BaseURL:     scenarios.MCPBaseURL,
				StatusDelay: scenarios.DefaultStatusDelay,
			},
			RealData: RealDataSuiteConfig{
				BaseURL:      scenarios.DocumentsBaseURL,
				WorkDir:      scenarios.DefaultWorkDir,
				IndexDelay:   scenarios.DefaultIndexDelay,
				DocumentType: scenarios.DefaultDocumentType,
			},
			Verify: VerifySuiteConfig{
				BaseURL:    scenarios.DocumentsBaseURL,
				DocumentID: scenarios.DefaultVerifyDocumentID,
			},
		},
		Report: ReportConfig{
			Dir: ".",
			S3: S3Config{
				Prefix: "gestctl/reports",
				Region: "us-east-1",
			},
		},
		MockServer: MockServerConfig{
			Host: "localhost",
			Port: 3003,
		},
	}
}
