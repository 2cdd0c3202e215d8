// Package migrate diffs the tracking store against the current mapping
// table and applies the resulting repository migrations. Detection is a
// pure function over both stores; application shells out to the package
// installer and repository toggler one package at a time, collecting
// per-package failures instead of aborting the batch.
package migrate

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/pkgmap"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/tracking"
)

// Action classifies what a migration candidate requires.
type Action string

const (
	// ActionReinstall means the distro-specific package name changed, so
	// the old package is removed and the new one installed.
	ActionReinstall Action = "reinstall"
	// ActionSourceChange means only the repository source changed; the
	// installed name stays the same.
	ActionSourceChange Action = "source-change"
)

// Change is one migration candidate: a tracked package whose current
// mapping resolves to a different source than the one it was installed from.
type Change struct {
	Package   tracking.Package
	Mapping   pkgmap.Mapping
	OldSource pkgmap.Source
	NewSource pkgmap.Source
	Action    Action
}

// DetectChanges compares every tracked package against the current mapping
// table and returns the candidates whose source diverged. Packages without
// a mapping are skipped. The result is ordered by installed name ascending
// and the inputs are never mutated.
func DetectChanges(tracked []tracking.Package, table *pkgmap.Table) []Change {
	pkgs := make([]tracking.Package, len(tracked))
	copy(pkgs, tracked)
	sort.Slice(pkgs, func(i, j int) bool {
		return pkgs[i].InstalledName < pkgs[j].InstalledName
	})

	var changes []Change
	for _, p := range pkgs {
		// Records written before the original name was tracked fall
		// back to the installed name as the lookup key.
		key := p.OriginalName
		if key == "" {
			key = p.InstalledName
		}

		m, ok := table.Resolve(key)
		if !ok {
			continue
		}
		if m.Source.Equal(p.Source) {
			continue
		}

		action := ActionSourceChange
		if m.InstalledName != p.InstalledName || crossesBuildBoundary(p.Source.Class, m.Source.Class) {
			action = ActionReinstall
		}
		changes = append(changes, Change{
			Package:   p,
			Mapping:   m,
			OldSource: p.Source,
			NewSource: m.Source,
			Action:    action,
		})
	}
	return changes
}

// crossesBuildBoundary reports whether a class transition swaps the
// installed artifact itself. AUR packages are locally built and flatpaks
// are not native packages at all, so moving a package on or off either
// requires a remove+install even when the name is unchanged.
func crossesBuildBoundary(oldClass, newClass pkgmap.Class) bool {
	foreign := func(c pkgmap.Class) bool {
		return c == pkgmap.ClassAur || c == pkgmap.ClassFlatpak
	}
	if foreign(oldClass) && foreign(newClass) {
		return oldClass != newClass
	}
	return foreign(oldClass) != foreign(newClass)
}

// Installer installs and removes packages. Implementations route the names
// to the right package manager for the given source; the planner owns none
// of the retry logic.
type Installer interface {
	Install(src pkgmap.Source, names []string) map[string]error
	Remove(src pkgmap.Source, names []string) map[string]error
}

// RepoToggler enables and disables third-party repository registrations.
// Both operations are idempotent.
type RepoToggler interface {
	Enable(src pkgmap.Source) error
	Disable(src pkgmap.Source) error
}

// Confirmer decides per candidate whether to proceed. Returning an error
// counts as a denial; migration must fail safe on EOF or an aborted prompt.
type Confirmer interface {
	Confirm(c Change) (bool, error)
}

// AutoConfirm approves every candidate without prompting.
type AutoConfirm struct{}

// Confirm always returns true.
func (AutoConfirm) Confirm(Change) (bool, error) { return true, nil }

// Failure records why one package's migration did not complete.
type Failure struct {
	Package string
	Reason  string
}

// Result summarizes one migration run.
type Result struct {
	Planned  int
	Applied  int
	Skipped  int
	Failures []Failure
	// AppliedChanges lists the candidates that completed, for callers
	// that record an audit trail. Applied == len(AppliedChanges).
	AppliedChanges []Change
}

// Options configures Apply.
type Options struct {
	Installer Installer
	Repos     RepoToggler
	Confirm   Confirmer
	// Now supplies install timestamps; defaults to time.Now.
	Now func() time.Time
	// Log receives best-effort warnings (e.g. a repo disable that
	// failed after the install succeeded). Defaults to os.Stderr.
	Log io.Writer
}

// Apply executes a migration plan strictly sequentially. For each confirmed
// candidate it enables the new repository, installs the new package, updates
// the tracking store, saves it, and finally disables the old repository if
// no other tracked package still depends on it.
//
// An install failure leaves that package's tracking record untouched, so a
// later run sees the same stale state and re-attempts; one package failing
// never corrupts the state of another. A failed repo disable is only a
// warning.
func Apply(store *tracking.Store, changes []Change, opts Options) (Result, error) {
	if opts.Confirm == nil {
		opts.Confirm = AutoConfirm{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = os.Stderr
	}
	if opts.Installer == nil || opts.Repos == nil {
		return Result{}, fmt.Errorf("migrate: installer and repo toggler are required")
	}

	res := Result{Planned: len(changes)}

	for _, c := range changes {
		ok, err := opts.Confirm.Confirm(c)
		if err != nil || !ok {
			res.Skipped++
			continue
		}

		if err := applyOne(store, c, opts); err != nil {
			res.Failures = append(res.Failures, Failure{
				Package: c.Package.InstalledName,
				Reason:  err.Error(),
			})
			continue
		}
		res.Applied++
		res.AppliedChanges = append(res.AppliedChanges, c)
	}

	return res, nil
}

// applyOne migrates a single package. The tracking store is only mutated
// after the new package installed successfully.
func applyOne(store *tracking.Store, c Change, opts Options) error {
	if c.NewSource.NeedsRepo() {
		if err := opts.Repos.Enable(c.NewSource); err != nil {
			return fmt.Errorf("enable %s: %v", c.NewSource, err)
		}
	}

	newName := c.Mapping.InstalledName
	names := append([]string{newName}, c.Mapping.AlsoInstalls...)
	for _, name := range names {
		if err := opts.Installer.Install(c.NewSource, []string{name})[name]; err != nil {
			return fmt.Errorf("install %s: %v", name, err)
		}
	}

	// When the installed name changed, the old package is removed after
	// the new one is in place. Same-name reinstalls (e.g. AUR to repo)
	// already replaced the artifact during install.
	oldName := c.Package.InstalledName
	if c.Action == ActionReinstall && oldName != newName {
		if err := opts.Installer.Remove(c.OldSource, []string{oldName})[oldName]; err != nil {
			fmt.Fprintf(opts.Log, "warning: failed to remove old package %s: %v\n", oldName, err)
		}
		if err := store.Remove(oldName); err != nil {
			fmt.Fprintf(opts.Log, "warning: stale tracking record for %s: %v\n", oldName, err)
		}
	}

	store.RecordInstall(tracking.Package{
		OriginalName:  c.Mapping.GenericName,
		InstalledName: newName,
		Source:        c.NewSource,
		Category:      c.Package.Category,
		InstalledAt:   opts.Now(),
	})
	if err := store.Save(); err != nil {
		return fmt.Errorf("save tracking store: %v", err)
	}

	// Drop the old repository registration only when the package moved
	// away from it and nothing else tracked still uses it.
	if c.OldSource.NeedsRepo() && !c.OldSource.SameRepo(c.NewSource) {
		if store.UsersOfRepo(c.OldSource, newName) == 0 {
			if err := opts.Repos.Disable(c.OldSource); err != nil {
				fmt.Fprintf(opts.Log, "warning: failed to disable %s: %v\n", c.OldSource, err)
			}
		}
	}

	return nil
}
