package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if cfg.Plates.Bar != nil || cfg.Timer.Presets != nil || cfg.Log.Level != nil {
		t.Fatalf("expected unset values, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[plates]
bar = 35

[timer]
presets = [60, 90, 180]
chime = false

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Plates.Bar == nil || *cfg.Plates.Bar != 35 {
		t.Fatalf("unexpected bar: %v", cfg.Plates.Bar)
	}
	if cfg.Timer.Presets == nil || len(*cfg.Timer.Presets) != 3 || (*cfg.Timer.Presets)[1] != 90 {
		t.Fatalf("unexpected presets: %v", cfg.Timer.Presets)
	}
	if cfg.Timer.Chime == nil || *cfg.Timer.Chime {
		t.Fatalf("expected chime=false")
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[plates]\nbarbell = 45\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "liftkit", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "liftkit", "liftkit.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/tmp/data", "liftkit", "liftkit.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}
