// Package project persists user-facing state between runs: application
// preferences, saved bin request files, and the built-in bin templates.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tracefinity/tracebin/internal/model"
)

// DefaultConfigDir returns the default directory for application
// configuration. On all platforms this is ~/.tracebin/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".tracebin")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// DefaultStoreDir returns the default artifact store location.
func DefaultStoreDir() string {
	return filepath.Join(DefaultConfigDir(), "artifacts")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	var config model.AppConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	// Ensure RecentBins is never nil
	if config.RecentBins == nil {
		config.RecentBins = []string{}
	}
	return config, nil
}

// AddRecentBin prepends a bin file to the recent list, deduplicating and
// keeping at most ten entries.
func AddRecentBin(config *model.AppConfig, path string) {
	recent := []string{path}
	for _, p := range config.RecentBins {
		if p != path && len(recent) < 10 {
			recent = append(recent, p)
		}
	}
	config.RecentBins = recent
}
