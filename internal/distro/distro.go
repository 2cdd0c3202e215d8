// Package distro detects the distribution family the tool is running on.
package distro

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Family groups distributions by package manager and third-party
// repository class: COPR for the Fedora family, AUR for Arch, PPA for
// Debian/Ubuntu.
type Family string

const (
	FamilyFedora  Family = "fedora"
	FamilyArch    Family = "arch"
	FamilyDebian  Family = "debian"
	FamilyUnknown Family = "unknown"
)

// ParseFamily normalizes a user-supplied family name (config file or
// --distro flag).
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fedora":
		return FamilyFedora, nil
	case "arch":
		return FamilyArch, nil
	case "debian", "ubuntu":
		return FamilyDebian, nil
	default:
		return FamilyUnknown, fmt.Errorf("unknown distro family %q (expected fedora, arch or debian)", s)
	}
}

// Detect reads /etc/os-release and returns the distribution family.
func Detect() (Family, error) {
	f, err := os.Open("/etc/os-release")
	if err != nil {
		return FamilyUnknown, fmt.Errorf("open /etc/os-release: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads os-release formatted data and maps ID (and ID_LIKE as a
// fallback) to a Family.
func Parse(r io.Reader) (Family, error) {
	var id string
	var idLike []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch key {
		case "ID":
			id = value
		case "ID_LIKE":
			idLike = strings.Fields(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return FamilyUnknown, fmt.Errorf("read os-release: %w", err)
	}

	if fam := familyForID(id); fam != FamilyUnknown {
		return fam, nil
	}
	for _, like := range idLike {
		if fam := familyForID(like); fam != FamilyUnknown {
			return fam, nil
		}
	}
	return FamilyUnknown, fmt.Errorf("unsupported distribution %q", id)
}

func familyForID(id string) Family {
	switch strings.ToLower(id) {
	case "fedora", "rhel", "centos", "nobara", "ultramarine":
		return FamilyFedora
	case "arch", "archlinux", "manjaro", "endeavouros", "cachyos":
		return FamilyArch
	case "debian", "ubuntu", "linuxmint", "pop":
		return FamilyDebian
	default:
		return FamilyUnknown
	}
}
