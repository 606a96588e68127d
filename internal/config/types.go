package config

import (
	"time"
)

// GestctlConfig is the top-level configuration structure for gestctl.
type GestctlConfig struct {
	LogLevel   string           `yaml:"logLevel,omitempty"`
	Suites     SuitesConfig     `yaml:"suites"`
	Report     ReportConfig     `yaml:"report"`
	MockServer MockServerConfig `yaml:"mockServer"`
}

// SuitesConfig holds per-suite settings. Only endpoints and pauses are
// configurable; scenario semantics are fixed.
type SuitesConfig struct {
	MCP      MCPSuiteConfig      `yaml:"mcp"`
	RealData RealDataSuiteConfig `yaml:"realData"`
	Verify   VerifySuiteConfig   `yaml:"verify"`
}

// MCPSuiteConfig configures the capability suite.
type MCPSuiteConfig struct {
	BaseURL     string        `yaml:"baseURL,omitempty"`
	StatusDelay time.Duration `yaml:"statusDelay,omitempty"` // wait before polling a triggered workflow
}

// RealDataSuiteConfig configures the document workflow suite.
type RealDataSuiteConfig struct {
	BaseURL      string        `yaml:"baseURL,omitempty"`
	WorkDir      string        `yaml:"workDir,omitempty"`    // where the invoice fixture is written
	IndexDelay   time.Duration `yaml:"indexDelay,omitempty"` // wait before looking the upload up
	DocumentType string        `yaml:"documentType,omitempty"`
}

// VerifySuiteConfig configures the document verification probe.
type VerifySuiteConfig struct {
	BaseURL    string `yaml:"baseURL,omitempty"`
	DocumentID string `yaml:"documentID,omitempty"`
}

// ReportConfig controls where JSON reports go.
type ReportConfig struct {
	Dir string   `yaml:"dir,omitempty"`
	S3  S3Config `yaml:"s3"`
}

// S3Config enables uploading reports to S3-compatible storage. Upload is
// off while Bucket is empty. Credentials accept ${ENV_VAR} references.
type S3Config struct {
	Bucket          string `yaml:"bucket,omitempty"`
	Prefix          string `yaml:"prefix,omitempty"`
	Region          string `yaml:"region,omitempty"`
	EndpointURL     string `yaml:"endpointURL,omitempty"`
	AccessKeyID     string `yaml:"accessKeyID,omitempty"`
	SecretAccessKey string `yaml:"secretAccessKey,omitempty"`
	ForcePathStyle  bool   `yaml:"forcePathStyle,omitempty"`
}

// Enabled reports whether reports should be uploaded.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// MockServerConfig configures `gestctl mock-server`.
type MockServerConfig struct {
	Host         string        `yaml:"host,omitempty"`
	Port         int           `yaml:"port,omitempty"`
	Latency      time.Duration `yaml:"latency,omitempty"`
	NoExtraction bool          `yaml:"noExtraction,omitempty"`
}
