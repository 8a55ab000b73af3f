package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const cliConfigFile = "config.toml"

// CLIConfig is the todoctl session file.
type CLIConfig struct {
	Server    string `toml:"server"`
	Token     string `toml:"token,omitempty"`
	Email     string `toml:"email,omitempty"`
	WeekStart string `toml:"week_start,omitempty"`
}

// DefaultCLIPath returns ~/.config/todoctl/config.toml, honoring
// XDG_CONFIG_HOME.
func DefaultCLIPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "todoctl", cliConfigFile), nil
}

// LoadCLI reads the CLI config. A missing file yields the defaults.
func LoadCLI(path string) (CLIConfig, error) {
	cfg := CLIConfig{Server: "http://localhost:8080", WeekStart: "sunday"}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	return cfg, nil
}

// SaveCLI writes the CLI config with owner-only permissions since it holds
// the bearer token.
func SaveCLI(path string, cfg CLIConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
