package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestctl/internal/scenarios"
)

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// withConfigPaths points both layers at files inside a temp dir.
func withConfigPaths(t *testing.T) (user, project string) {
	t.Helper()
	dir := t.TempDir()
	user = filepath.Join(dir, "home", userConfigDir, configFileName)
	project = filepath.Join(dir, "work", projectConfigDir, configFileName)

	origUser, origProject := getUserConfigPath, getProjectConfigPath
	t.Cleanup(func() {
		getUserConfigPath = origUser
		getProjectConfigPath = origProject
	})
	getUserConfigPath = func() (string, error) { return user, nil }
	getProjectConfigPath = func() (string, error) { return project, nil }

	return user, project
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	withConfigPaths(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
	assert.False(t, cfg.Report.S3.Enabled())
}

func TestLoadConfig_UserOverride(t *testing.T) {
	user, _ := withConfigPaths(t)
	writeConfigFile(t, user, `
logLevel: debug
suites:
  mcp:
    baseURL: http://gestagent.internal:3003
    statusDelay: 250ms
  verify:
    documentID: doc-42
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://gestagent.internal:3003", cfg.Suites.MCP.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Suites.MCP.StatusDelay)
	assert.Equal(t, "doc-42", cfg.Suites.Verify.DocumentID)

	def := GetDefaultConfig()
	assert.Equal(t, def.Suites.RealData, cfg.Suites.RealData)
	assert.Equal(t, def.Suites.Verify.BaseURL, cfg.Suites.Verify.BaseURL)
}

func TestLoadConfig_ProjectOverridesUser(t *testing.T) {
	user, project := withConfigPaths(t)
	writeConfigFile(t, user, `
suites:
  realData:
    baseURL: http://user:3001
    documentType: ticket
mockServer:
  port: 4000
`)
	writeConfigFile(t, project, `
suites:
  realData:
    baseURL: http://project:3001
report:
  dir: reports
mockServer:
  noExtraction: true
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://project:3001", cfg.Suites.RealData.BaseURL)
	assert.Equal(t, "ticket", cfg.Suites.RealData.DocumentType)
	assert.Equal(t, "reports", cfg.Report.Dir)
	assert.Equal(t, 4000, cfg.MockServer.Port)
	assert.True(t, cfg.MockServer.NoExtraction)
}

func TestLoadConfig_ExpandsS3Credentials(t *testing.T) {
	_, project := withConfigPaths(t)
	t.Setenv("GESTCTL_TEST_KEY", "AKIAEXAMPLE")
	t.Setenv("GESTCTL_TEST_SECRET", "s3cr3t")
	writeConfigFile(t, project, `
report:
  s3:
    bucket: qa-reports
    endpointURL: http://minio:9000
    forcePathStyle: true
    accessKeyID: ${GESTCTL_TEST_KEY}
    secretAccessKey: ${GESTCTL_TEST_SECRET}
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	s3 := cfg.Report.S3
	assert.True(t, s3.Enabled())
	assert.Equal(t, "AKIAEXAMPLE", s3.AccessKeyID)
	assert.Equal(t, "s3cr3t", s3.SecretAccessKey)
	assert.True(t, s3.ForcePathStyle)
	assert.Equal(t, "us-east-1", s3.Region)
	assert.Equal(t, "gestctl/reports", s3.Prefix)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	user, _ := withConfigPaths(t)
	writeConfigFile(t, user, "suites: [not, a, map")

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error loading user config")
}

func TestLoadConfig_UnresolvablePathsAreSkipped(t *testing.T) {
	origUser, origProject := getUserConfigPath, getProjectConfigPath
	t.Cleanup(func() {
		getUserConfigPath = origUser
		getProjectConfigPath = origProject
	})
	getUserConfigPath = func() (string, error) { return "", errors.New("no home") }
	getProjectConfigPath = func() (string, error) { return "", errors.New("no cwd") }

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestMergeConfigs_ZeroOverlayKeepsBase(t *testing.T) {
	base := GetDefaultConfig()
	assert.Equal(t, base, mergeConfigs(base, GestctlConfig{}))
}

func TestGetUserConfigDir(t *testing.T) {
	orig := osUserHomeDir
	t.Cleanup(func() { osUserHomeDir = orig })
	osUserHomeDir = func() (string, error) { return "/home/tester", nil }

	dir, err := GetUserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".config", "gestctl"), dir)
}

func TestGetDefaultConfig_MatchesSuiteDefaults(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, scenarios.MCPBaseURL, cfg.Suites.MCP.BaseURL)
	assert.Equal(t, scenarios.DefaultStatusDelay, cfg.Suites.MCP.StatusDelay)
	assert.Equal(t, scenarios.DocumentsBaseURL, cfg.Suites.RealData.BaseURL)
	assert.Equal(t, scenarios.DefaultIndexDelay, cfg.Suites.RealData.IndexDelay)
	assert.Equal(t, scenarios.DefaultWorkDir, cfg.Suites.RealData.WorkDir)
	assert.Equal(t, scenarios.DefaultDocumentType, cfg.Suites.RealData.DocumentType)
	assert.Equal(t, scenarios.DocumentsBaseURL, cfg.Suites.Verify.BaseURL)
	assert.Equal(t, scenarios.DefaultVerifyDocumentID, cfg.Suites.Verify.DocumentID)
}
