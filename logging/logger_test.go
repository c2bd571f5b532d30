package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stresscheck/config"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, flush, err := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("detection complete")
	flush()

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(payload), `"msg":"detection complete"`) {
		t.Fatalf("expected JSON entry, got %s", payload)
	}
	if strings.Contains(string(payload), "hidden") {
		t.Fatalf("debug entry leaked at info level: %s", payload)
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, flush, err := New(config.LogConfig{Level: "warn", File: path}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Debug("visible")
	flush()

	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(payload), "visible") {
		t.Fatalf("expected debug entry, got %s", payload)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, _, err := New(config.LogConfig{Level: "chatty"}, false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
