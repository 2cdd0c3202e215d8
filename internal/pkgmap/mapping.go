// Package pkgmap parses the user-editable package mapping file into an
// in-memory table keyed by generic package name.
//
// The mapping file is INI-like, with one section per distribution family:
//
//	[pkgmap.fedora]
//	lazygit=COPR:atim/lazygit
//	qtile-extras=COPR:frostyx/qtile:python3-qtile-extras
//	fd=fd-find
//
//	[pkgmap.arch]
//	lazygit=AUR:lazygit
//
// A value is either a plain distro package name (optionally several,
// comma-separated) or a source tag of the form TAG:arg1[:arg2[:arg3]].
// Recognized tags are COPR, AUR, PPA and flatpak; anything else is taken as
// an official package name. When the same generic name appears twice within
// a section, the last entry wins.
package pkgmap

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Mapping is one resolved entry of the mapping table.
type Mapping struct {
	// GenericName is the distribution-independent key.
	GenericName string
	// InstalledName is the name actually passed to the package manager.
	InstalledName string
	// AlsoInstalls holds additional official package names from
	// comma-separated values. Empty for tagged sources.
	AlsoInstalls []string
	Source       Source
}

// ParseError describes a malformed mapping file. Parsing is all-or-nothing:
// a ParseError means no table was produced.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// Table holds the mappings of one distribution family.
type Table struct {
	Family   string
	mappings map[string]Mapping
}

// Resolve looks up the mapping for a generic package name.
func (t *Table) Resolve(genericName string) (Mapping, bool) {
	m, ok := t.mappings[genericName]
	return m, ok
}

// Len returns the number of mappings in the table.
func (t *Table) Len() int {
	return len(t.mappings)
}

// GenericNames returns all mapped generic names in ascending order.
func (t *Table) GenericNames() []string {
	names := make([]string, 0, len(t.mappings))
	for name := range t.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseEntry parses one mapping value for the given generic name.
//
// The COPR fallback rule: for COPR:owner/repo without an explicit third
// field, the installed name defaults to the generic name being mapped (not
// the repo name). Several packages may share one COPR project, so the key
// takes priority over any repo-derived name.
func ParseEntry(genericName, value string) (Mapping, error) {
	m := Mapping{GenericName: genericName}

	// Comments must be stripped before the value is split on commas;
	// otherwise trailing comment text parses as an extra package.
	if i := strings.IndexByte(value, '#'); i >= 0 {
		value = value[:i]
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return m, fmt.Errorf("empty value for %q", genericName)
	}

	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return m, fmt.Errorf("empty package in comma-separated value for %q", genericName)
		}
	}

	first := parts[0]

	// The literal value "official" pins a package to the distro's own
	// repositories under its generic name (used to migrate a package back
	// off a third-party source).
	if strings.EqualFold(first, "official") {
		if len(parts) > 1 {
			return m, fmt.Errorf("comma-separated packages for %q are not valid after the official keyword", genericName)
		}
		m.Source = Official()
		m.InstalledName = genericName
		return m, nil
	}

	tag, rest, tagged := strings.Cut(first, ":")
	cls := ClassUnknown
	if tagged {
		cls = ParseClass(tag)
	}

	switch cls {
	case ClassCopr:
		project, pkg, _ := strings.Cut(rest, ":")
		owner, repo, ok := strings.Cut(project, "/")
		if !ok || owner == "" || repo == "" {
			return m, fmt.Errorf("COPR source for %q must be COPR:owner/repo[:pkg], got %q", genericName, first)
		}
		m.Source = Source{Class: ClassCopr, Owner: owner, Repo: repo, Pkg: pkg}
		m.InstalledName = pkg
		if pkg == "" {
			m.InstalledName = genericName
		}
	case ClassAur:
		if rest == "" {
			return m, fmt.Errorf("AUR source for %q must name a package, got %q", genericName, first)
		}
		m.Source = Source{Class: ClassAur, Pkg: rest}
		m.InstalledName = rest
	case ClassPpa:
		owner, repo, ok := strings.Cut(rest, "/")
		if !ok || owner == "" || repo == "" {
			return m, fmt.Errorf("PPA source for %q must be PPA:owner/repo, got %q", genericName, first)
		}
		m.Source = Source{Class: ClassPpa, Owner: owner, Repo: repo}
		m.InstalledName = genericName
	case ClassFlatpak:
		remote, app, hasApp := strings.Cut(rest, ":")
		if !hasApp {
			// flatpak:app.Id defaults the remote to flathub.
			remote, app = "flathub", remote
		}
		if app == "" {
			return m, fmt.Errorf("flatpak source for %q must name an application ID, got %q", genericName, first)
		}
		m.Source = Source{Class: ClassFlatpak, Remote: remote}
		m.InstalledName = app
	default:
		// No recognized TAG: prefix means an official package name.
		m.Source = Official()
		m.InstalledName = first
	}

	if len(parts) > 1 {
		if m.Source.Class != ClassOfficial {
			return m, fmt.Errorf("comma-separated packages for %q are only valid with official sources", genericName)
		}
		m.AlsoInstalls = parts[1:]
	}

	return m, nil
}

// Load parses the mapping file at path and returns the table for the given
// distribution family. Sections for other families are validated for shape
// but otherwise skipped. A missing file is an error; a file without a
// section for the family yields an empty table.
func Load(path, family string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping file: %w", err)
	}
	defer f.Close()

	table := &Table{Family: family, mappings: make(map[string]Mapping)}
	want := "pkgmap." + family

	inWanted := false
	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, &ParseError{Path: path, Line: lineNo, Msg: fmt.Sprintf("unterminated section header %q", line)}
			}
			section := strings.TrimSpace(line[1 : len(line)-1])
			if section == "" {
				return nil, &ParseError{Path: path, Line: lineNo, Msg: "empty section header"}
			}
			inWanted = section == want
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &ParseError{Path: path, Line: lineNo, Msg: fmt.Sprintf("expected key=value, got %q", line)}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &ParseError{Path: path, Line: lineNo, Msg: "empty generic name"}
		}
		if !inWanted {
			continue
		}

		m, err := ParseEntry(key, value)
		if err != nil {
			return nil, &ParseError{Path: path, Line: lineNo, Msg: err.Error()}
		}
		// Last entry wins on duplicate generic names.
		table.mappings[key] = m
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}

	return table, nil
}
