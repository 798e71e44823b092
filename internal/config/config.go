package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Insights InsightsConfig `toml:"insights"`
	Log      LogConfig      `toml:"log"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	DatabasePath string `toml:"database_path"`
}

// InsightsConfig points at the insight generator. An empty URL disables it.
type InsightsConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LogConfig holds logging settings. An empty path disables logging.
type LogConfig struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

// Timeout returns the request timeout for the insight generator.
func (c InsightsConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Default returns a Config with sensible defaults
func Default() *Config {
	dir := configDir()
	return &Config{
		General: GeneralConfig{
			DatabasePath: filepath.Join(dir, "dayplan.db"),
		},
		Insights: InsightsConfig{
			TimeoutSeconds: 15,
		},
		Log: LogConfig{
			Level: "info",
			Path:  filepath.Join(dir, "dayplan.log"),
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)
	cfg.Log.Path = ExpandPath(cfg.Log.Path)

	return cfg, nil
}

// Save writes cfg as TOML, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dayplan")
}
