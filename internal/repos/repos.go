// Package repos enables and disables third-party repository registrations
// (COPR projects, PPAs, flatpak remotes) by shelling out to the relevant
// package-manager commands. All operations are idempotent: enabling an
// already-enabled repository is a no-op, not an error.
package repos

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/pkgmap"
)

// runFunc executes a command and returns its combined output. Tests swap
// this out to avoid touching the system.
type runFunc func(name string, args ...string) ([]byte, error)

// Toggler toggles repository registrations on the running system.
type Toggler struct {
	run runFunc
}

// New returns a Toggler that executes real commands.
func New() *Toggler {
	return &Toggler{
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}
}

// Enable registers the repository behind src.
func (t *Toggler) Enable(src pkgmap.Source) error {
	switch src.Class {
	case pkgmap.ClassCopr:
		return t.enableCopr(src.Owner, src.Repo)
	case pkgmap.ClassPpa:
		return t.enablePpa(src.Owner, src.Repo)
	case pkgmap.ClassFlatpak:
		return t.enableFlatpakRemote(src.Remote)
	case pkgmap.ClassAur:
		// AUR needs no registration, only a helper on PATH.
		return t.checkAurHelper()
	default:
		return nil
	}
}

// Disable removes the repository registration behind src.
func (t *Toggler) Disable(src pkgmap.Source) error {
	switch src.Class {
	case pkgmap.ClassCopr:
		project := src.Owner + "/" + src.Repo
		output, err := t.run("dnf", "copr", "remove", project, "-y")
		if err != nil {
			return fmt.Errorf("dnf copr remove %s failed: %w (output: %s)", project, err, string(output))
		}
		return nil
	case pkgmap.ClassPpa:
		ppa := "ppa:" + src.Owner + "/" + src.Repo
		output, err := t.run("add-apt-repository", "--remove", "-y", ppa)
		if err != nil {
			return fmt.Errorf("add-apt-repository --remove %s failed: %w (output: %s)", ppa, err, string(output))
		}
		return nil
	case pkgmap.ClassFlatpak:
		output, err := t.run("flatpak", "remote-delete", "--force", src.Remote)
		if err != nil {
			return fmt.Errorf("flatpak remote-delete %s failed: %w (output: %s)", src.Remote, err, string(output))
		}
		return nil
	default:
		return nil
	}
}

// enableCopr enables a COPR project, skipping the enable when the project
// is already registered.
func (t *Toggler) enableCopr(owner, repo string) error {
	project := owner + "/" + repo

	enabled, err := t.coprEnabled(project)
	if err != nil {
		return err
	}
	if enabled {
		return nil
	}

	output, err := t.run("dnf", "copr", "enable", project, "-y")
	if err != nil {
		return fmt.Errorf("dnf copr enable %s failed: %w (output: %s)", project, err, string(output))
	}
	return nil
}

// coprEnabled checks `dnf copr list` for the project.
func (t *Toggler) coprEnabled(project string) (bool, error) {
	output, err := t.run("dnf", "copr", "list")
	if err != nil {
		return false, fmt.Errorf("dnf copr list failed: %w (output: %s)", err, string(output))
	}

	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		// dnf prints entries as copr.fedorainfracloud.org/owner/repo,
		// possibly suffixed with " (disabled)".
		if strings.HasSuffix(line, "(disabled)") {
			continue
		}
		if strings.HasSuffix(line, "/"+project) || line == project {
			return true, nil
		}
	}
	return false, nil
}

func (t *Toggler) enablePpa(owner, repo string) error {
	ppa := "ppa:" + owner + "/" + repo
	// add-apt-repository is itself idempotent for already-added archives.
	output, err := t.run("add-apt-repository", "-y", ppa)
	if err != nil {
		return fmt.Errorf("add-apt-repository %s failed: %w (output: %s)", ppa, err, string(output))
	}
	return nil
}

func (t *Toggler) enableFlatpakRemote(remote string) error {
	url := remoteURL(remote)
	output, err := t.run("flatpak", "remote-add", "--if-not-exists", remote, url)
	if err != nil {
		return fmt.Errorf("flatpak remote-add %s failed: %w (output: %s)", remote, err, string(output))
	}
	return nil
}

// remoteURL returns the flatpakrepo URL for a known remote name. Unknown
// remotes follow the flathub URL convention.
func remoteURL(remote string) string {
	switch remote {
	case "flathub":
		return "https://dl.flathub.org/repo/flathub.flatpakrepo"
	case "flathub-beta":
		return "https://dl.flathub.org/beta-repo/flathub-beta.flatpakrepo"
	default:
		return fmt.Sprintf("https://dl.flathub.org/repo/%s.flatpakrepo", remote)
	}
}

// checkAurHelper verifies an AUR helper is available.
func (t *Toggler) checkAurHelper() error {
	for _, helper := range []string{"paru", "yay"} {
		if _, err := t.run("which", helper); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no AUR helper found (tried paru, yay)")
}
