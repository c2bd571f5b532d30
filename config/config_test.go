package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
http:
  port: 9090
sheet:
  url: http://example.test/sheet.csv
  timeout: 3s
ml:
  model_type: linear
  model_path: artifacts/model.json
database:
  path: ""
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Http.Port)
	}
	if cfg.Http.Timeout != 30*time.Second {
		t.Fatalf("expected default http timeout, got %v", cfg.Http.Timeout)
	}
	if cfg.Sheet.Timeout != 3*time.Second {
		t.Fatalf("expected sheet timeout 3s, got %v", cfg.Sheet.Timeout)
	}
	if cfg.ML.ModelType != "linear" || cfg.ML.ModelPath != "artifacts/model.json" {
		t.Fatalf("unexpected ml config: %+v", cfg.ML)
	}
	if cfg.ML.ScalerPath != "models/scaler_stres.json" {
		t.Fatalf("expected default scaler path, got %s", cfg.ML.ScalerPath)
	}
	if cfg.Database.Path != "" {
		t.Fatalf("expected history to be disabled, got %q", cfg.Database.Path)
	}
	if cfg.Log.Level != "debug" || cfg.Log.MaxBackups != 3 {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}

	cfg.RelativeTo(dir)
	if cfg.ML.ModelPath != filepath.Join(dir, "artifacts/model.json") {
		t.Fatalf("expected model path relative to config dir, got %s", cfg.ML.ModelPath)
	}
	if cfg.Database.Path != "" {
		t.Fatalf("empty paths must stay empty, got %q", cfg.Database.Path)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"bad port":    "http:\n  port: 70000\n",
		"no sheet":    "sheet:\n  url: \"\"\n",
		"no scaler":   "ml:\n  scaler_path: \"\"\n",
		"not yaml":    "http: [port\n",
		"bad timeout": "sheet:\n  timeout: soon\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestBundledConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load("../config.yaml")
	if err != nil {
		t.Fatalf("bundled config does not load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("bundled config drifted from defaults (-default +file):\n%s", diff)
	}
}
