package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Zuo-Peng/chatmap/internal/chatmap"
)

// EnvPath overrides the config file location.
const EnvPath = "CHATMAP_CONFIG"

type Include struct {
	Photos bool `toml:"photos"`
	Videos bool `toml:"videos"`
	Audios bool `toml:"audios"`
	Text   bool `toml:"text"`
}

type Config struct {
	ExportRoot    string   `toml:"export_root"`
	DBPath        string   `toml:"db_path"`
	Addr          string   `toml:"addr"`
	LogLevel      string   `toml:"log_level"`
	MaxInputBytes int64    `toml:"max_input_bytes"`
	Ignore        []string `toml:"ignore"`
	Include       Include  `toml:"include"`
}

// Options returns the pairing options selected by [include].
func (c *Config) Options() chatmap.Options {
	return chatmap.Options{
		IncludePhotos: c.Include.Photos,
		IncludeVideos: c.Include.Videos,
		IncludeAudios: c.Include.Audios,
		IncludeText:   c.Include.Text,
	}
}

func Default(home string) *Config {
	return &Config{
		ExportRoot:    filepath.Join(home, "Downloads", "chat-exports"),
		DBPath:        filepath.Join(home, ".config", "chatmap", "chatmap.db"),
		Addr:          "127.0.0.1:8088",
		LogLevel:      "info",
		MaxInputBytes: 64 << 20,
		Include:       Include{Photos: true, Videos: true, Audios: true, Text: true},
	}
}

// Load reads ~/.config/chatmap/config.toml, or the file named by
// CHATMAP_CONFIG, over the defaults. A missing file is not an error.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfgPath := os.Getenv(EnvPath)
	if cfgPath == "" {
		cfgPath = filepath.Join(home, ".config", "chatmap", "config.toml")
	}
	return LoadFile(cfgPath, home)
}

func LoadFile(cfgPath, home string) (*Config, error) {
	cfg := Default(home)

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if cfg.MaxInputBytes <= 0 {
		return nil, fmt.Errorf("config %s: max_input_bytes must be positive", cfgPath)
	}

	// expand ~ in paths
	cfg.ExportRoot = expandHome(cfg.ExportRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
