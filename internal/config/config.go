// Package config loads the tool configuration and resolves the default
// file locations under the XDG base directories.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is loaded from ~/.config/autopenguin/config.yaml. Every field is
// optional; empty fields fall back to detection (distro) or the default
// paths (everything else).
type Config struct {
	// Distro overrides distribution detection ("fedora", "arch", "debian").
	Distro string `yaml:"distro"`
	// MappingPath points at the package mapping file.
	MappingPath string `yaml:"mapping_path"`
	// TrackingPath points at the tracking store file.
	TrackingPath string `yaml:"tracking_path"`
	// HistoryDB points at the SQLite audit log.
	HistoryDB string `yaml:"history_db"`
}

// Dir returns the autopenguin config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/autopenguin if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "autopenguin"), nil
}

// DataDir returns the autopenguin data directory, respecting XDG_DATA_HOME.
// Defaults to ~/.local/share/autopenguin if XDG_DATA_HOME is not set.
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "autopenguin"), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields a config with
// all defaults applied; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.applyDefaults(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills empty paths from the XDG directories.
func (c *Config) applyDefaults() error {
	if c.MappingPath == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.MappingPath = filepath.Join(dir, "package_mappings.conf")
	}

	dataDir, err := DataDir()
	if err != nil {
		return err
	}
	if c.TrackingPath == "" {
		c.TrackingPath = filepath.Join(dataDir, "tracked_packages")
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(dataDir, "history.db")
	}
	return nil
}
