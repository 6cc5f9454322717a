// Package config loads and saves the tuistory CLI configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/remorses/tuistory/log"
)

const ConfigFileName = "config.json"

// GetConfigDir returns the path to the application's configuration directory.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tuistory"), nil
}

// Config represents the application configuration.
type Config struct {
	// DefaultCols is the terminal width used when a scenario or flag
	// doesn't specify one.
	DefaultCols int `json:"default_cols"`
	// DefaultRows is the terminal height used when a scenario or flag
	// doesn't specify one.
	DefaultRows int `json:"default_rows"`
	// WaitTimeoutMs is a stored default wait timeout. The CLI and the
	// scenario runner do not read it; wait steps use the session's own
	// 5s default.
	WaitTimeoutMs int `json:"wait_timeout_ms"`
	// ArtifactDir is where scenario runs write snapshots and frames.
	// Empty means a per-run directory under the system temp dir.
	ArtifactDir string `json:"artifact_dir"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultCols:   80,
		DefaultRows:   24,
		WaitTimeoutMs: 5000,
	}
}

// LoadConfig loads the configuration, creating the file with defaults if
// it doesn't exist yet. Errors fall back to defaults so the CLI always
// starts.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			defaultCfg := DefaultConfig()
			if saveErr := SaveConfig(defaultCfg); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			return defaultCfg
		}
		log.WarningLog.Printf("failed to read config file: %v", err)
		return DefaultConfig()
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}
	if cfg.DefaultCols <= 0 {
		cfg.DefaultCols = 80
	}
	if cfg.DefaultRows <= 0 {
		cfg.DefaultRows = 24
	}
	if cfg.WaitTimeoutMs <= 0 {
		cfg.WaitTimeoutMs = 5000
	}
	return &cfg
}

// SaveConfig saves the configuration to disk.
func SaveConfig(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(configDir, ConfigFileName), data, 0o644)
}
