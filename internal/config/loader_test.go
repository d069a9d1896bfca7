package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("host = %q", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 18890 {
		t.Errorf("port = %d", cfg.Gateway.Port)
	}
	if !cfg.Report.Enabled || cfg.Report.IntervalMinutes != 40 {
		t.Errorf("report = %+v", cfg.Report)
	}
	if cfg.Worker.Timeout != 30*time.Second {
		t.Errorf("worker timeout = %v", cfg.Worker.Timeout)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	t.Setenv("CLAWDECK_CONFIG", path)

	file := map[string]any{
		"gateway": map[string]any{"port": 9999},
		"report":  map[string]any{"enabled": false, "intervalMinutes": 20},
	}
	data, _ := json.Marshal(file)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Gateway.Port)
	}
	if cfg.Report.Enabled {
		t.Error("report should be disabled by file")
	}
	if cfg.Report.IntervalMinutes != 20 {
		t.Errorf("interval = %d, want 20", cfg.Report.IntervalMinutes)
	}
	// File never set the host, so the default survives.
	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("host = %q", cfg.Gateway.Host)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	t.Setenv("CLAWDECK_CONFIG", path)

	data, _ := json.Marshal(map[string]any{"gateway": map[string]any{"port": 9999}})
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CLAWDECK_GATEWAY_PORT", "7777")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.Port != 7777 {
		t.Errorf("port = %d, want env override 7777", cfg.Gateway.Port)
	}
}

func TestLegacyPortVariable(t *testing.T) {
	t.Setenv("CLAWDECK_CONFIG", filepath.Join(t.TempDir(), "config.json"))
	t.Setenv("PORT", "4242")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gateway.Port != 4242 {
		t.Errorf("port = %d, want 4242", cfg.Gateway.Port)
	}
}

func TestLoadNormalizesInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	t.Setenv("CLAWDECK_CONFIG", path)

	data, _ := json.Marshal(map[string]any{
		"report": map[string]any{"enabled": true, "intervalMinutes": -5},
	})
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Report.IntervalMinutes != 40 {
		t.Errorf("interval = %d, want floor 40", cfg.Report.IntervalMinutes)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("CLAWDECK_CONFIG", path)

	cfg := DefaultConfig()
	cfg.Gateway.Port = 12345
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Gateway.Port != 12345 {
		t.Errorf("port = %d, want 12345", loaded.Gateway.Port)
	}
}
