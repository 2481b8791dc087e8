package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeAPI(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeComparison()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeAPI() error {
	if value, ok := os.LookupEnv("AGORA_API_URL"); ok && strings.TrimSpace(value) != "" {
		c.API.BaseURL = value
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultAPIBaseURL
	}
	if value, ok := os.LookupEnv("AGORA_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.API.Token = value
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.UploadTimeoutSeconds <= 0 {
		c.API.UploadTimeoutSeconds = defaultUploadTimeoutSeconds
	}
	if c.API.LookupTimeoutSeconds <= 0 {
		c.API.LookupTimeoutSeconds = defaultLookupTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeComparison() {
	if c.Comparison.MaxFiles == 0 {
		c.Comparison.MaxFiles = defaultMaxFiles
	}
	if len(c.Comparison.AllowedExtensions) == 0 {
		c.Comparison.AllowedExtensions = append([]string(nil), defaultAllowedExtensions...)
		return
	}
	exts := make([]string, 0, len(c.Comparison.AllowedExtensions))
	seen := make(map[string]struct{}, len(c.Comparison.AllowedExtensions))
	for _, ext := range c.Comparison.AllowedExtensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append([]string(nil), defaultAllowedExtensions...)
	}
	c.Comparison.AllowedExtensions = exts
}

func (c *Config) normalizeExport() {
	c.Export.Institution = strings.TrimSpace(c.Export.Institution)
	if c.Export.Institution == "" {
		c.Export.Institution = defaultInstitution
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
