package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Listen != "127.0.0.1:7466" {
		t.Errorf("Expected default listen address, got %s", cfg.Listen)
	}
	if len(cfg.Staffing.Staff) == 0 {
		t.Error("Expected default staff directory")
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen: 0.0.0.0:9000
monitor:
  interval: 15s
  lookahead: 1h
staffing:
  max_candidates: 3
  staff:
    - id: STF900
      name: Night Porter
      skills: [driving]
      on_duty: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Errorf("Expected listen override, got %s", cfg.Listen)
	}
	if cfg.Monitor.Interval != 15*time.Second || cfg.Monitor.Lookahead != time.Hour {
		t.Errorf("Unexpected monitor config %+v", cfg.Monitor)
	}
	if !cfg.Monitor.Enabled {
		t.Error("Unset fields should keep their defaults")
	}
	if cfg.Staffing.MaxCandidates != 3 {
		t.Errorf("Expected 3 candidates, got %d", cfg.Staffing.MaxCandidates)
	}
	if len(cfg.Staffing.Staff) != 1 || cfg.Staffing.Staff[0].ID != "STF900" {
		t.Errorf("Expected staff list to be replaced, got %+v", cfg.Staffing.Staff)
	}
	if len(cfg.Staffing.Rules) == 0 {
		t.Error("Default rules should survive when not overridden")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":       "listen: [",
		"bad listen":     "listen: nowhere",
		"short interval": "monitor:\n  interval: 10ms\n",
		"no candidates":  "staffing:\n  max_candidates: 0\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			os.WriteFile(path, []byte(content), 0o600)
			if _, err := LoadConfig(path); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Monitor.Interval = 2 * time.Minute
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Monitor.Interval != 2*time.Minute {
		t.Errorf("Expected 2m interval, got %v", loaded.Monitor.Interval)
	}
	if len(loaded.Staffing.Vehicles) != len(cfg.Staffing.Vehicles) {
		t.Errorf("Vehicles lost in round trip")
	}

	if err := SaveConfig(path, nil); err == nil {
		t.Error("SaveConfig(nil) should fail")
	}
}
