// Package installer wraps the distribution's package manager. It reports a
// per-name outcome so callers can keep going when a single package fails.
package installer

import (
	"fmt"
	"os/exec"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/distro"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/pkgmap"
)

type runFunc func(name string, args ...string) ([]byte, error)

// Manager installs and removes packages with the package manager of one
// distribution family. Flatpak applications are routed to flatpak on every
// family; AUR packages go through a helper on Arch.
type Manager struct {
	family distro.Family
	run    runFunc
}

// New returns a Manager for the given family.
func New(family distro.Family) *Manager {
	return &Manager{
		family: family,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}
}

// Install installs each named package from src and returns the outcome per
// name. Packages are installed one at a time so one failure does not void
// the rest of the batch.
func (m *Manager) Install(src pkgmap.Source, names []string) map[string]error {
	out := make(map[string]error, len(names))
	for _, name := range names {
		out[name] = m.installOne(src, name)
	}
	return out
}

// Remove uninstalls each named package and returns the outcome per name.
func (m *Manager) Remove(src pkgmap.Source, names []string) map[string]error {
	out := make(map[string]error, len(names))
	for _, name := range names {
		out[name] = m.removeOne(src, name)
	}
	return out
}

func (m *Manager) installOne(src pkgmap.Source, name string) error {
	cmd, args, err := m.installCommand(src, name)
	if err != nil {
		return err
	}
	output, err := m.run(cmd, args...)
	if err != nil {
		return fmt.Errorf("%s install %s failed: %w (output: %s)", cmd, name, err, string(output))
	}
	return nil
}

func (m *Manager) removeOne(src pkgmap.Source, name string) error {
	cmd, args, err := m.removeCommand(src, name)
	if err != nil {
		return err
	}
	output, err := m.run(cmd, args...)
	if err != nil {
		return fmt.Errorf("%s remove %s failed: %w (output: %s)", cmd, name, err, string(output))
	}
	return nil
}

func (m *Manager) installCommand(src pkgmap.Source, name string) (string, []string, error) {
	if src.Class == pkgmap.ClassFlatpak {
		remote := src.Remote
		if remote == "" {
			remote = "flathub"
		}
		return "flatpak", []string{"install", "-y", remote, name}, nil
	}

	switch m.family {
	case distro.FamilyFedora:
		return "dnf", []string{"install", "-y", name}, nil
	case distro.FamilyArch:
		if src.Class == pkgmap.ClassAur {
			helper, err := m.aurHelper()
			if err != nil {
				return "", nil, err
			}
			return helper, []string{"-S", "--noconfirm", name}, nil
		}
		return "pacman", []string{"-S", "--noconfirm", "--needed", name}, nil
	case distro.FamilyDebian:
		return "apt-get", []string{"install", "-y", name}, nil
	default:
		return "", nil, fmt.Errorf("no package manager for distro family %q", m.family)
	}
}

func (m *Manager) removeCommand(src pkgmap.Source, name string) (string, []string, error) {
	if src.Class == pkgmap.ClassFlatpak {
		return "flatpak", []string{"uninstall", "-y", name}, nil
	}

	switch m.family {
	case distro.FamilyFedora:
		return "dnf", []string{"remove", "-y", name}, nil
	case distro.FamilyArch:
		return "pacman", []string{"-Rns", "--noconfirm", name}, nil
	case distro.FamilyDebian:
		return "apt-get", []string{"remove", "-y", name}, nil
	default:
		return "", nil, fmt.Errorf("no package manager for distro family %q", m.family)
	}
}

// aurHelper returns the first AUR helper found on PATH.
func (m *Manager) aurHelper() (string, error) {
	for _, helper := range []string{"paru", "yay"} {
		if _, err := m.run("which", helper); err == nil {
			return helper, nil
		}
	}
	return "", fmt.Errorf("no AUR helper found (tried paru, yay)")
}
