package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wang-painter/internal/topology"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"ssh_addr": ":2022", "seed": 42, "layout": {"orientation": "staggered", "staggeraxis": "x"}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SSHAddr != ":2022" || cfg.Seed != 42 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Width != 64 || cfg.HTTPAddr != ":8080" {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Layout.Orientation != topology.Staggered || cfg.Layout.StaggerAxis != topology.StaggerX {
		t.Errorf("layout = %+v", cfg.Layout)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestMergeKeepsExplicitFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.Width = 10

	fromFile := DefaultConfig()
	fromFile.Seed = 99
	fromFile.Width = 20
	fromFile.TileSet = "cliffs"

	Merge(cfg, fromFile, map[string]bool{"seed": true})

	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, explicit flag should win", cfg.Seed)
	}
	if cfg.Width != 20 || cfg.TileSet != "cliffs" {
		t.Errorf("file values not merged: %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "2323")
	cfg := DefaultConfig()
	ApplyEnv(cfg)
	if cfg.SSHAddr != ":2323" {
		t.Errorf("SSHAddr = %q", cfg.SSHAddr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no ssh address", func(c *Config) { c.SSHAddr = "" }},
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"bad layout", func(c *Config) { c.Layout.Orientation = "spiral" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Layout.Orientation = "spiral"
	if err := cfg.Validate(); !errors.Is(err, topology.ErrUnknownOrientation) {
		t.Errorf("error = %v, want ErrUnknownOrientation", err)
	}

	cfg = DefaultConfig()
	cfg.Width, cfg.MapFile = 0, "town.json"
	if err := cfg.Validate(); err != nil {
		t.Errorf("map file should not need a size: %v", err)
	}
}
