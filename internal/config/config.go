// Package config loads the tool's configuration from ~/.tvmeta/config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds connection settings for the recording system and grabber
// setup. Empty grabber chains mean "use every discovered grabber with the
// matching capability".
type Config struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`

	// Pinned fallback chains, in lookup order.
	MovieGrabbers []string `json:"movie_grabbers"`
	TVGrabbers    []string `json:"tv_grabbers"`

	// Namespaced grabber arguments, e.g. "tmdb-key".
	GrabberArgs map[string]string `json:"grabber_args"`

	// Extra directories searched for grabber manifests.
	GrabberPaths []string `json:"grabber_paths"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Host:        "localhost",
		Port:        9981,
		GrabberArgs: make(map[string]string),
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tvmeta", "config.json"), nil
}

// Load reads the configuration from disk. A missing file yields the
// defaults; a malformed one is an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	defaults := Default()
	if cfg.Host == "" {
		cfg.Host = defaults.Host
	}
	if cfg.Port == 0 {
		cfg.Port = defaults.Port
	}
	if cfg.GrabberArgs == nil {
		cfg.GrabberArgs = make(map[string]string)
	}

	return &cfg, nil
}

// Save writes the configuration to disk, creating ~/.tvmeta if needed.
func (cfg *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
