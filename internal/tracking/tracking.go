// Package tracking persists a record of every package the tool has
// installed: its generic name, the name actually installed, where it came
// from, and when. The store is a line-oriented text file grouped by
// installed package name:
//
//	[lazygit]
//	original=lazygit
//	source=COPR:atim/lazygit:lazygit
//	category=core
//	installed_at=2025-01-12T10:30:00Z
//
// The file is read fully at load and rewritten fully on save, via a temp
// file and rename so a partial write never loses existing entries.
package tracking

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/pkgmap"
)

// ErrNotFound is returned by Get for packages that were never recorded.
var ErrNotFound = errors.New("package not tracked")

// Package is one tracking record.
type Package struct {
	// OriginalName is the generic name from the user's package list.
	// Records written by old versions may leave it empty.
	OriginalName  string
	InstalledName string
	Source        pkgmap.Source
	Category      string
	InstalledAt   time.Time
}

// ParseError describes a structurally malformed tracking file.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// Store holds all tracking records and owns the backing file.
type Store struct {
	path string
	pkgs map[string]Package
}

// Load reads the tracking file at path. A missing file yields an empty
// store; individual missing or unparsable fields default to their zero
// values so records written by older versions still load.
func Load(path string) (*Store, error) {
	s := &Store{path: path, pkgs: make(map[string]Package)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open tracking file: %w", err)
	}
	defer f.Close()

	var cur *Package
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
				return nil, &ParseError{Path: path, Line: lineNo, Msg: fmt.Sprintf("unterminated record header %q", line)}
			}
			name := strings.TrimSpace(line[1 : len(line)-1])
			if name == "" {
				return nil, &ParseError{Path: path, Line: lineNo, Msg: "empty record header"}
			}
			if cur != nil {
				s.pkgs[cur.InstalledName] = *cur
			}
			cur = &Package{InstalledName: name, Source: pkgmap.Source{Class: pkgmap.ClassUnknown}}
			continue
		}

		if cur == nil {
			return nil, &ParseError{Path: path, Line: lineNo, Msg: fmt.Sprintf("field %q outside any record", line)}
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &ParseError{Path: path, Line: lineNo, Msg: fmt.Sprintf("expected key=value, got %q", line)}
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "original":
			cur.OriginalName = value
		case "source":
			cur.Source = pkgmap.ParseSourceTag(value)
		case "category":
			cur.Category = value
		case "installed_at":
			// Bad timestamps load as zero time rather than failing.
			if t, err := time.Parse(time.RFC3339, value); err == nil {
				cur.InstalledAt = t
			}
		default:
			// Unknown fields from newer versions are ignored.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tracking file: %w", err)
	}
	if cur != nil {
		s.pkgs[cur.InstalledName] = *cur
	}

	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of tracked packages.
func (s *Store) Len() int {
	return len(s.pkgs)
}

// RecordInstall adds or overwrites the record for p.InstalledName. Calling
// it twice with the same installed name updates the existing record instead
// of duplicating it, so repeated runs of idempotent install commands never
// double-count.
func (s *Store) RecordInstall(p Package) {
	s.pkgs[p.InstalledName] = p
}

// Get returns the record for an installed package name, or ErrNotFound.
func (s *Store) Get(installedName string) (Package, error) {
	p, ok := s.pkgs[installedName]
	if !ok {
		return Package{}, fmt.Errorf("%q: %w", installedName, ErrNotFound)
	}
	return p, nil
}

// Remove deletes the record for an installed package name.
func (s *Store) Remove(installedName string) error {
	if _, ok := s.pkgs[installedName]; !ok {
		return fmt.Errorf("%q: %w", installedName, ErrNotFound)
	}
	delete(s.pkgs, installedName)
	return nil
}

// List returns tracked packages ordered by installed name. When
// filterBySource is non-empty only packages from that repository class are
// returned; the filter is case-insensitive, so "aur" and "AUR" select the
// same set.
func (s *Store) List(filterBySource string) []Package {
	var want pkgmap.Class
	if filterBySource != "" {
		want = pkgmap.ParseClass(filterBySource)
	}

	pkgs := make([]Package, 0, len(s.pkgs))
	for _, p := range s.pkgs {
		if filterBySource != "" && p.Source.Class != want {
			continue
		}
		pkgs = append(pkgs, p)
	}
	sort.Slice(pkgs, func(i, j int) bool {
		return pkgs[i].InstalledName < pkgs[j].InstalledName
	})
	return pkgs
}

// UsersOfRepo returns how many tracked packages other than exceptName still
// come from the same repository registration as src.
func (s *Store) UsersOfRepo(src pkgmap.Source, exceptName string) int {
	count := 0
	for _, p := range s.pkgs {
		if p.InstalledName == exceptName {
			continue
		}
		if p.Source.SameRepo(src) && p.Source.Class == src.Class {
			count++
		}
	}
	return count
}

// Save rewrites the tracking file in full. It writes to a temp file in the
// same directory and renames it over the target, so an interrupted save
// leaves the previous contents intact.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create tracking directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tracking-*")
	if err != nil {
		return fmt.Errorf("create temp tracking file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, p := range s.List("") {
		fmt.Fprintf(w, "[%s]\n", p.InstalledName)
		fmt.Fprintf(w, "original=%s\n", p.OriginalName)
		fmt.Fprintf(w, "source=%s\n", p.Source)
		fmt.Fprintf(w, "category=%s\n", p.Category)
		if !p.InstalledAt.IsZero() {
			fmt.Fprintf(w, "installed_at=%s\n", p.InstalledAt.UTC().Format(time.RFC3339))
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write tracking file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp tracking file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace tracking file: %w", err)
	}
	return nil
}
