// Package config holds the server configuration: built-in defaults, an
// optional JSON file and command line flags, applied in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"wang-painter/internal/topology"
)

// Config holds the server configuration.
type Config struct {
	SSHAddr    string `json:"ssh_addr"`
	HTTPAddr   string `json:"http_addr"` // empty disables the HTTP API
	HostKey    string `json:"host_key"`
	TileSetDir string `json:"tileset_dir"`
	TileSet    string `json:"tileset"` // empty uses the built-in grass and water set
	MapFile    string `json:"map"`     // empty generates a map at startup
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Seed       uint64 `json:"seed"`
	Debug      bool   `json:"debug"`

	Layout topology.Descriptor `json:"layout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SSHAddr:    ":2222",
		HTTPAddr:   ":8080",
		HostKey:    "host_key",
		TileSetDir: "assets/tilesets",
		Width:      64,
		Height:     32,
		Seed:       1,
		Layout:     topology.Descriptor{Orientation: topology.Orthogonal},
	}
}

// Load reads a JSON config file. Fields the file leaves out keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["ssh"] {
		cfg.SSHAddr = fromFile.SSHAddr
	}
	if !explicitFlags["http"] {
		cfg.HTTPAddr = fromFile.HTTPAddr
	}
	if !explicitFlags["host-key"] {
		cfg.HostKey = fromFile.HostKey
	}
	if !explicitFlags["tilesets"] {
		cfg.TileSetDir = fromFile.TileSetDir
	}
	if !explicitFlags["tileset"] {
		cfg.TileSet = fromFile.TileSet
	}
	if !explicitFlags["map"] {
		cfg.MapFile = fromFile.MapFile
	}
	if !explicitFlags["width"] {
		cfg.Width = fromFile.Width
	}
	if !explicitFlags["height"] {
		cfg.Height = fromFile.Height
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["debug"] {
		cfg.Debug = fromFile.Debug
	}
	if !explicitFlags["orientation"] {
		cfg.Layout = fromFile.Layout
	}
}

// ApplyEnv lets the hosting environment pick the SSH port through PORT.
func ApplyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.SSHAddr = ":" + port
	}
}

// Validate checks the values a server cannot start without.
func (c *Config) Validate() error {
	if c.SSHAddr == "" {
		return fmt.Errorf("ssh address is empty")
	}
	if c.MapFile == "" && (c.Width <= 0 || c.Height <= 0) {
		return fmt.Errorf("invalid map size %dx%d", c.Width, c.Height)
	}
	if _, err := topology.New(c.Layout); err != nil {
		return err
	}
	return nil
}
