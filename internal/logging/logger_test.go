package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agora/internal/config"
	"agora/internal/logging"
	"agora/internal/services"
)

func newBufferLogger(t *testing.T, level, format string) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: level, Format: format, Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger, &buf
}

func decodeJSONLine(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, data)
	}
	return payload
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.ToFile = true
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("comparison started", logging.String(logging.FieldComponent, "comparison"), logging.Int("archivos", 3))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "INFO  comparison: comparison started") {
		t.Fatalf("expected component prefix and message, got %q", line)
	}
	if !strings.Contains(line, "archivos=3") {
		t.Fatalf("expected archivos field, got %q", line)
	}
}

func TestConsoleLoggerOmitsSourceForInfo(t *testing.T) {
	logger, buf := newBufferLogger(t, "info", "console")
	logger.Info("cache saved")

	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("info logs should not include source, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug", "console")
	logger.Debug("request built")

	if !strings.Contains(buf.String(), "[logger_test.go:") {
		t.Fatalf("debug logs should include source, got %q", buf.String())
	}
}

func TestConsoleWarningLayout(t *testing.T) {
	base, buf := newBufferLogger(t, "info", "console")

	runID := "1a2b3c4d-5e6f-4a1b-8c9d-0e1f2a3b4c5d"
	ctx := services.WithRunID(context.Background(), runID)
	ctx = services.WithRequestID(ctx, runID)
	ctx = services.WithProgramaID(ctx, 7)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(base, "resultcache"))

	logging.WarnWithContext(logger, "cache not persisted", "cache_save_failed",
		logging.Error(errors.New("disk full")),
		logging.String(logging.FieldImpact, "results will not survive this session"),
	)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected headline plus impact and hint lines, got %q", buf.String())
	}
	wantHead := `WARN  resultcache: cache not persisted (cache_save_failed) run=1a2b3c4d programa=7 error="disk full"`
	if !strings.HasSuffix(lines[0], wantHead) {
		t.Fatalf("unexpected headline:\n got %q\nwant suffix %q", lines[0], wantHead)
	}
	if lines[1] != "    impact: results will not survive this session" {
		t.Fatalf("unexpected impact line %q", lines[1])
	}
	if lines[2] != "    hint: check logs for details" {
		t.Fatalf("unexpected hint line %q", lines[2])
	}
	if strings.Contains(buf.String(), "request=") || strings.Contains(buf.String(), runID) {
		t.Fatalf("run-scoped request id should collapse into run=, got %q", buf.String())
	}
}

func TestConsoleKeepsForeignRequestIDAndGroups(t *testing.T) {
	base, buf := newBufferLogger(t, "info", "console")

	ctx := services.WithOperation(context.Background(), "pensum")
	ctx = services.WithRequestID(ctx, "req-9")
	logging.WithContext(ctx, base).WithGroup("http").Info("lookup finished", slog.Int("status", 200), slog.String("path", ""))

	out := buf.String()
	for _, want := range []string{"INFO  lookup finished", "op=pensum", "request=req-9", "http.status=200", `http.path=""`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
	if strings.Index(out, "op=pensum") > strings.Index(out, "http.status=200") {
		t.Fatalf("correlation fields should lead, got %q", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	logger, buf := newBufferLogger(t, "info", "json")
	logger.Info("export written", logging.String("formato", "xlsx"))

	payload := decodeJSONLine(t, buf.Bytes())
	if payload["msg"] != "export written" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["formato"] != "xlsx" {
		t.Fatalf("unexpected formato: %v", payload["formato"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key in %v", payload)
	}
	if _, ok := payload["source"]; ok {
		t.Fatalf("info json logs should not carry source: %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", Writer: io.Discard}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logger, _ := newBufferLogger(t, "loud", "console")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be disabled when level is invalid")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be enabled when level is invalid")
	}

	warnOnly, _ := newBufferLogger(t, "WARN", "json")
	if warnOnly.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("level names should be case-insensitive")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	base, buf := newBufferLogger(t, "info", "json")

	ctx := services.WithRunID(context.Background(), "run-123")
	ctx = services.WithProgramaID(ctx, 7)
	logging.WithContext(ctx, base).Info("verification finished")

	payload := decodeJSONLine(t, buf.Bytes())
	if payload[logging.FieldRunID] != "run-123" {
		t.Fatalf("expected run id, got %v", payload[logging.FieldRunID])
	}
	if payload[logging.FieldProgramaID] != float64(7) {
		t.Fatalf("expected programa id 7, got %v", payload[logging.FieldProgramaID])
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logger, buf := newBufferLogger(t, "warn", "json")

	logging.WarnWithContext(logger, "cache not persisted", "cache_save_failed",
		logging.String(logging.FieldImpact, "results will not survive this session"),
	)

	payload := decodeJSONLine(t, buf.Bytes())
	if payload[logging.FieldEventType] != "cache_save_failed" {
		t.Fatalf("unexpected event_type: %v", payload[logging.FieldEventType])
	}
	if payload[logging.FieldErrorHint] == nil {
		t.Fatal("expected default error_hint")
	}
	if payload[logging.FieldImpact] != "results will not survive this session" {
		t.Fatalf("impact should not be overwritten, got %v", payload[logging.FieldImpact])
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should never be enabled")
	}
	logging.WarnWithContext(nil, "ignored", "noop")
}
