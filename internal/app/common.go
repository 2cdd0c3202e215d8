package app

import (
	"fmt"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/config"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/distro"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/history"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/pkgmap"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/tracking"
)

// env bundles the resolved configuration for one command invocation.
type env struct {
	cfg    *config.Config
	family distro.Family
}

// loadEnv resolves config file, flag overrides and the distro family.
// Precedence: flag > config file > detection.
func loadEnv() (*env, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flagMapping != "" {
		cfg.MappingPath = flagMapping
	}
	if flagTracking != "" {
		cfg.TrackingPath = flagTracking
	}
	if flagDB != "" {
		cfg.HistoryDB = flagDB
	}

	name := flagDistro
	if name == "" {
		name = cfg.Distro
	}

	var family distro.Family
	if name != "" {
		family, err = distro.ParseFamily(name)
	} else {
		family, err = distro.Detect()
	}
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, family: family}, nil
}

// loadTable loads the mapping table for the active distro family.
func (e *env) loadTable() (*pkgmap.Table, error) {
	return pkgmap.Load(e.cfg.MappingPath, string(e.family))
}

// loadTracking loads the tracking store.
func (e *env) loadTracking() (*tracking.Store, error) {
	return tracking.Load(e.cfg.TrackingPath)
}

// openHistory opens the audit log database.
func (e *env) openHistory() (*history.Store, error) {
	return history.Open(e.cfg.HistoryDB)
}
