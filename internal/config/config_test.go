package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"

	"agora/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("AGORA_TOKEN", "")
	t.Setenv("AGORA_API_URL", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "agora")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.CachePath() != filepath.Join(wantState, "session.db") {
		t.Fatalf("unexpected cache path: %q", cfg.CachePath())
	}
	if cfg.API.BaseURL != "http://localhost:8000/api" {
		t.Fatalf("unexpected base url: %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "" {
		t.Fatalf("expected empty token by default, got %q", cfg.API.Token)
	}
	if cfg.Comparison.MaxFiles != 50 {
		t.Fatalf("expected max files 50, got %d", cfg.Comparison.MaxFiles)
	}
	if diff := cmp.Diff([]string{".csv", ".xlsx", ".xls"}, cfg.Comparison.AllowedExtensions); diff != "" {
		t.Fatalf("allowed extensions mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected console log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "agora.toml")
	t.Setenv("AGORA_TOKEN", "")
	t.Setenv("AGORA_API_URL", "")

	type payload struct {
		API struct {
			BaseURL string `toml:"base_url"`
			Token   string `toml:"token"`
		} `toml:"api"`
		Comparison struct {
			MaxFiles          int      `toml:"max_files"`
			AllowedExtensions []string `toml:"allowed_extensions"`
		} `toml:"comparison"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.API.BaseURL = "https://agora.example.edu/api/"
	custom.API.Token = "  file-token "
	custom.Comparison.MaxFiles = 10
	custom.Comparison.AllowedExtensions = []string{"CSV", ".csv", " .XLSX "}
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.API.BaseURL != "https://agora.example.edu/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "file-token" {
		t.Fatalf("expected trimmed token, got %q", cfg.API.Token)
	}
	if cfg.Comparison.MaxFiles != 10 {
		t.Fatalf("expected max files 10, got %d", cfg.Comparison.MaxFiles)
	}
	if diff := cmp.Diff([]string{".csv", ".xlsx"}, cfg.Comparison.AllowedExtensions); diff != "" {
		t.Fatalf("allowed extensions mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "agora.toml")
	contents := "[api]\nbase_url = \"http://file.example/api\"\ntoken = \"file-token\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("AGORA_TOKEN", "env-token")
	t.Setenv("AGORA_API_URL", "http://env.example/api")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.Token != "env-token" {
		t.Errorf("expected token from env, got %q", cfg.API.Token)
	}
	if cfg.API.BaseURL != "http://env.example/api" {
		t.Errorf("expected base url from env, got %q", cfg.API.BaseURL)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "AGORA_TOKEN") {
		t.Fatalf("sample config missing token hint: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Comparison.MaxFiles != 50 {
		t.Fatalf("expected sample max_files 50, got %d", cfg.Comparison.MaxFiles)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.API.BaseURL = "ftp://agora.example"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http base url")
	}

	cfg = config.Default()
	cfg.API.BaseURL = "http://"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for base url without host")
	}

	cfg = config.Default()
	cfg.Comparison.MaxFiles = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max files")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
