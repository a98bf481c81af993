package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Vodeneev/betcode/internal/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	logger := slog.New(h).With("service", "test")

	logger.Debug("resolving", "code", "ABC")
	logger.Warn("navigation failed", "url", "https://example.org")

	if !strings.Contains(debugBuf.String(), "resolving") || !strings.Contains(debugBuf.String(), "navigation failed") {
		t.Errorf("debug handler got %q", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "resolving") || !strings.Contains(warnBuf.String(), `"service":"test"`) {
		t.Errorf("warn handler got %q", warnBuf.String())
	}
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("multi handler should be enabled when any child is")
	}
}

func TestSetupLogger_WritesJSONFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "converter.log")
	logger, closer, err := SetupLogger(&config.LoggingConfig{Level: "info", File: path}, "betcode-test")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("Code converted", "legs", 2)
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var line map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &line); err != nil {
		t.Fatalf("log file is not JSON: %q", data)
	}
	if line["service"] != "betcode-test" || line["msg"] != "Code converted" {
		t.Errorf("line = %v", line)
	}
}

func TestSetupLogger_BadFileKeepsStdout(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger, closer, err := SetupLogger(&config.LoggingConfig{File: filepath.Join(t.TempDir(), "missing", "x.log")}, "svc")
	if err == nil {
		t.Error("expected error for unwritable log file")
	}
	if logger == nil || closer == nil {
		t.Fatal("logger and closer must be usable on error")
	}
	closer.Close()
}
