package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/gestctl"
	projectConfigDir = ".gestctl"
	configFileName   = "config.yaml"
)

// LoadConfig loads the gestctl configuration by layering default, user, and project settings.
func LoadConfig() (GestctlConfig, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// user config is optional
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		config, err = overlayFile(config, userConfigPath)
		if err != nil {
			return GestctlConfig{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		config, err = overlayFile(config, projectConfigPath)
		if err != nil {
			return GestctlConfig{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
	}

	config.Report.S3 = expandCredentials(config.Report.S3)

	return config, nil
}

func overlayFile(base GestctlConfig, path string) (GestctlConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return GestctlConfig{}, err
	}
	return mergeConfigs(base, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a GestctlConfig from a YAML file.
func loadConfigFromFile(filePath string) (GestctlConfig, error) {
	var config GestctlConfig
	data, err := os.ReadFile(filePath)
	if err != nil {
		return GestctlConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return GestctlConfig{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in
// the overlay leave the base untouched.
func mergeConfigs(base, overlay GestctlConfig) GestctlConfig {
	merged := base

	setString(&merged.LogLevel, overlay.LogLevel)

	mcp := overlay.Suites.MCP
	setString(&merged.Suites.MCP.BaseURL, mcp.BaseURL)
	if mcp.StatusDelay != 0 {
		merged.Suites.MCP.StatusDelay = mcp.StatusDelay
	}

	rd := overlay.Suites.RealData
	setString(&merged.Suites.RealData.BaseURL, rd.BaseURL)
	setString(&merged.Suites.RealData.WorkDir, rd.WorkDir)
	setString(&merged.Suites.RealData.DocumentType, rd.DocumentType)
	if rd.IndexDelay != 0 {
		merged.Suites.RealData.IndexDelay = rd.IndexDelay
	}

	setString(&merged.Suites.Verify.BaseURL, overlay.Suites.Verify.BaseURL)
	setString(&merged.Suites.Verify.DocumentID, overlay.Suites.Verify.DocumentID)

	setString(&merged.Report.Dir, overlay.Report.Dir)
	s3 := overlay.Report.S3
	setString(&merged.Report.S3.Bucket, s3.Bucket)
	setString(&merged.Report.S3.Prefix, s3.Prefix)
	setString(&merged.Report.S3.Region, s3.Region)
	setString(&merged.Report.S3.EndpointURL, s3.EndpointURL)
	setString(&merged.Report.S3.AccessKeyID, s3.AccessKeyID)
	setString(&merged.Report.S3.SecretAccessKey, s3.SecretAccessKey)
	if s3.ForcePathStyle {
		merged.Report.S3.ForcePathStyle = true
	}

	ms := overlay.MockServer
	setString(&merged.MockServer.Host, ms.Host)
	if ms.Port != 0 {
		merged.MockServer.Port = ms.Port
	}
	if ms.Latency != 0 {
		merged.MockServer.Latency = ms.Latency
	}
	if ms.NoExtraction {
		merged.MockServer.NoExtraction = true
	}

	return merged
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// expandCredentials resolves ${VAR} references so secrets stay out of the file.
func expandCredentials(c S3Config) S3Config {
	c.AccessKeyID = os.ExpandEnv(c.AccessKeyID)
	c.SecretAccessKey = os.ExpandEnv(c.SecretAccessKey)
	return c
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
