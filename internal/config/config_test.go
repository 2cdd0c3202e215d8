package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.MappingPath != "/tmp/xdg-config/autopenguin/package_mappings.conf" {
		t.Errorf("MappingPath = %q, want default under XDG_CONFIG_HOME", cfg.MappingPath)
	}
	if cfg.TrackingPath != "/tmp/xdg-data/autopenguin/tracked_packages" {
		t.Errorf("TrackingPath = %q, want default under XDG_DATA_HOME", cfg.TrackingPath)
	}
	if cfg.HistoryDB != "/tmp/xdg-data/autopenguin/history.db" {
		t.Errorf("HistoryDB = %q, want default under XDG_DATA_HOME", cfg.HistoryDB)
	}
	if cfg.Distro != "" {
		t.Errorf("Distro = %q, want empty (detection)", cfg.Distro)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `distro: fedora
mapping_path: /etc/autopenguin/mappings.conf
tracking_path: /var/lib/autopenguin/tracked
history_db: /var/lib/autopenguin/history.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Distro != "fedora" {
		t.Errorf("Distro = %q, want fedora", cfg.Distro)
	}
	if cfg.MappingPath != "/etc/autopenguin/mappings.conf" {
		t.Errorf("MappingPath = %q, want explicit value", cfg.MappingPath)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("distro: [unterminated"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail on malformed YAML")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error %q should name the file", err)
	}
}

func TestDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() failed: %v", err)
	}
	if dir != "/custom/config/autopenguin" {
		t.Errorf("Dir() = %q, want /custom/config/autopenguin", dir)
	}
}
