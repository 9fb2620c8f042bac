package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/t2048.yaml
var defaultYAML []byte

// Default returns the built-in configuration. It matches the embedded
// defaults/t2048.yaml and is used if that file cannot be decoded.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			DBPath: "~/.t2048/scores.db",
		},
		SSH: SSHConfig{
			Address:     ":23234",
			IdleTimeout: 30 * time.Minute,
		},
		API: APIConfig{
			Address: ":8048",
		},
		Theme: ThemeConfig{
			GridLine:        "#ffffff",
			EmptyBackground: "#2b2b2b",
			DarkText:        "#1a1a1a",
			LightText:       "#ffffff",
			DarkTextMax:     32,
			BoldFrom:        1024,
			Fallback:        "#B71C1C",
			Tiles: map[int]string{
				2:    "#A8E6CF",
				4:    "#7FD3A6",
				8:    "#DCE775",
				16:   "#FFF176",
				32:   "#FFCC80",
				64:   "#FFB74D",
				128:  "#FF8A65",
				256:  "#FF7043",
				512:  "#F4511E",
				1024: "#E53935",
			},
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
