// Package config provides YAML-based configuration loading for t2048,
// with environment overrides for deployment.
package config

import (
	"fmt"
	"time"
)

// Config contains all runtime configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	SSH     SSHConfig     `yaml:"ssh"`
	API     APIConfig     `yaml:"api"`
	Theme   ThemeConfig   `yaml:"theme"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// StorageConfig locates the scores database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// SSHConfig configures the SSH server.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"` // empty = ~/.t2048/host_key
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	Address string `yaml:"address"`
}

// ThemeConfig holds the tile palette used by the terminal UI.
// Colors are anything lipgloss accepts (hex or ANSI codes).
type ThemeConfig struct {
	GridLine        string         `yaml:"grid_line"`
	EmptyBackground string         `yaml:"empty_background"`
	DarkText        string         `yaml:"dark_text"`
	LightText       string         `yaml:"light_text"`
	DarkTextMax     int            `yaml:"dark_text_max"` // tiles up to this value use DarkText
	BoldFrom        int            `yaml:"bold_from"`
	Fallback        string         `yaml:"fallback"` // background for values without an entry
	Tiles           map[int]string `yaml:"tiles"`
}

// Background returns the background color for a tile value.
func (t ThemeConfig) Background(value int) string {
	if value == 0 {
		return t.EmptyBackground
	}
	if c, ok := t.Tiles[value]; ok {
		return c
	}
	return t.Fallback
}

// Foreground returns the text color for a tile value.
func (t ThemeConfig) Foreground(value int) string {
	if value <= t.DarkTextMax {
		return t.DarkText
	}
	return t.LightText
}

// Bold reports whether a tile label is rendered bold.
func (t ThemeConfig) Bold(value int) bool {
	return t.BoldFrom > 0 && value >= t.BoldFrom
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for values the program cannot run with.
func (c Config) Validate() error {
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("config: invalid log level %q", c.Log.Level)
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("config: storage.db_path must not be empty")
	}
	if c.SSH.Address == "" {
		return fmt.Errorf("config: ssh.address must not be empty")
	}
	if c.SSH.IdleTimeout <= 0 {
		return fmt.Errorf("config: ssh.idle_timeout must be positive, got %s", c.SSH.IdleTimeout)
	}
	if c.API.Address == "" {
		return fmt.Errorf("config: api.address must not be empty")
	}
	return nil
}
