package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvFile is the dotenv file read by Load before applying overrides.
var EnvFile = ".env"

// Environment variables that override file configuration.
const (
	EnvLogLevel       = "T2048_LOG_LEVEL"
	EnvDBPath         = "T2048_DB_PATH"
	EnvSSHAddr        = "T2048_SSH_ADDR"
	EnvHostKey        = "T2048_HOST_KEY"
	EnvSSHIdleTimeout = "T2048_SSH_IDLE_TIMEOUT"
	EnvAPIAddr        = "T2048_API_ADDR"
)

// Load loads the configuration.
// Search order: customPath -> ~/.t2048/config.yaml -> ./configs/t2048.yaml -> embedded default.
// Files only need to set the fields they change; the rest come from the defaults.
// Environment variables (optionally from a .env file) are applied last.
func Load(customPath string) (Config, error) {
	cfg := base()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
	} else {
		for _, path := range []string{userConfigPath(), filepath.Join("configs", "t2048.yaml")} {
			if path == "" {
				continue
			}
			if next, ok := overlayFile(cfg, path); ok {
				cfg = next
				break
			}
		}
	}

	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config: failed to read %s: %w", EnvFile, err)
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// base decodes the embedded defaults, falling back to the hardcoded ones.
func base() Config {
	cfg := Default()
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default()
	}
	return cfg
}

// overlayFile decodes path on top of cfg. Unreadable or malformed files are skipped.
func overlayFile(cfg Config, path string) (Config, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}

	next := cfg
	next.Theme.Tiles = make(map[int]string, len(cfg.Theme.Tiles))
	for k, v := range cfg.Theme.Tiles {
		next.Theme.Tiles[k] = v
	}
	if err := yaml.Unmarshal(data, &next); err != nil {
		return cfg, false
	}
	return next, true
}

// userConfigPath returns the path to the user config file, or empty if home is unavailable.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".t2048", "config.yaml")
}

// ApplyEnv overrides cfg with values found through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		cfg.Storage.DBPath = v
	}
	if v, ok := lookup(EnvSSHAddr); ok && v != "" {
		cfg.SSH.Address = v
	}
	if v, ok := lookup(EnvHostKey); ok && v != "" {
		cfg.SSH.HostKeyPath = v
	}
	if v, ok := lookup(EnvSSHIdleTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid %s: %w", EnvSSHIdleTimeout, err)
		}
		cfg.SSH.IdleTimeout = d
	}
	if v, ok := lookup(EnvAPIAddr); ok && v != "" {
		cfg.API.Address = v
	}
	return nil
}
