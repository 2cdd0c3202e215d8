package pkgmap

import (
	"fmt"
	"strings"
)

// Class identifies the repository class a package is installed from.
type Class string

const (
	ClassOfficial Class = "official"
	ClassCopr     Class = "copr"
	ClassAur      Class = "aur"
	ClassPpa      Class = "ppa"
	ClassFlatpak  Class = "flatpak"
	ClassUnknown  Class = "unknown"
)

// ParseClass normalizes a user-supplied class name ("COPR", "copr", "Aur", ...)
// to its canonical Class. Unrecognized names map to ClassUnknown.
func ParseClass(s string) Class {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "official":
		return ClassOfficial
	case "copr":
		return ClassCopr
	case "aur":
		return ClassAur
	case "ppa":
		return ClassPpa
	case "flatpak":
		return ClassFlatpak
	default:
		return ClassUnknown
	}
}

// Source describes where a mapped package is installed from.
// Exactly which fields are populated depends on Class:
//
//	ClassCopr:    Owner, Repo, and optionally Pkg
//	ClassAur:     Pkg
//	ClassPpa:     Owner, Repo
//	ClassFlatpak: Remote
//
// Official and Unknown sources carry no extra fields.
type Source struct {
	Class  Class
	Owner  string
	Repo   string
	Pkg    string
	Remote string
}

// Official returns the source for a package installed from the distro's
// official repositories.
func Official() Source {
	return Source{Class: ClassOfficial}
}

// Equal reports whether two sources are identical including all sub-fields.
func (s Source) Equal(other Source) bool {
	return s == other
}

// SameRepo reports whether two sources point at the same third-party
// repository registration (same COPR project, same PPA, same flatpak
// remote), ignoring the package field.
func (s Source) SameRepo(other Source) bool {
	if s.Class != other.Class {
		return false
	}
	switch s.Class {
	case ClassCopr, ClassPpa:
		return s.Owner == other.Owner && s.Repo == other.Repo
	case ClassFlatpak:
		return s.Remote == other.Remote
	default:
		return true
	}
}

// NeedsRepo reports whether this source requires a repository registration
// on the system (and therefore participates in repo lifecycle accounting).
// AUR packages are built by a helper and need no registration.
func (s Source) NeedsRepo() bool {
	switch s.Class {
	case ClassCopr, ClassPpa, ClassFlatpak:
		return true
	default:
		return false
	}
}

// String renders the source in the same tag form used by mapping files,
// e.g. "COPR:atim/lazygit:lazygit", "AUR:paru", "PPA:user/archive",
// "flatpak:flathub". Official sources render as "official".
func (s Source) String() string {
	switch s.Class {
	case ClassCopr:
		if s.Pkg != "" {
			return fmt.Sprintf("COPR:%s/%s:%s", s.Owner, s.Repo, s.Pkg)
		}
		return fmt.Sprintf("COPR:%s/%s", s.Owner, s.Repo)
	case ClassAur:
		return fmt.Sprintf("AUR:%s", s.Pkg)
	case ClassPpa:
		return fmt.Sprintf("PPA:%s/%s", s.Owner, s.Repo)
	case ClassFlatpak:
		return fmt.Sprintf("flatpak:%s", s.Remote)
	case ClassOfficial:
		return "official"
	default:
		return "unknown"
	}
}

// ParseSourceTag parses the canonical string form produced by Source.String.
// It is tolerant by design: anything that does not carry a recognized tag
// prefix parses as ClassUnknown (old tracking records wrote sources in
// formats that predate some tags), never as an error.
func ParseSourceTag(s string) Source {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "unknown") {
		return Source{Class: ClassUnknown}
	}
	if strings.EqualFold(s, "official") {
		return Official()
	}

	tag, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Source{Class: ClassUnknown}
	}
	switch ParseClass(tag) {
	case ClassCopr:
		project, pkg, _ := strings.Cut(rest, ":")
		owner, repo, ok := strings.Cut(project, "/")
		if !ok {
			return Source{Class: ClassUnknown}
		}
		return Source{Class: ClassCopr, Owner: owner, Repo: repo, Pkg: pkg}
	case ClassAur:
		return Source{Class: ClassAur, Pkg: rest}
	case ClassPpa:
		owner, repo, ok := strings.Cut(rest, "/")
		if !ok {
			return Source{Class: ClassUnknown}
		}
		return Source{Class: ClassPpa, Owner: owner, Repo: repo}
	case ClassFlatpak:
		remote, _, _ := strings.Cut(rest, ":")
		return Source{Class: ClassFlatpak, Remote: remote}
	default:
		return Source{Class: ClassUnknown}
	}
}
