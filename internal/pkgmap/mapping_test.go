package pkgmap

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeMappingFile writes content to a temp file and returns its path.
func writeMappingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "package_mappings.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write mapping file: %v", err)
	}
	return path
}

func TestParseEntryCoprKeyFallback(t *testing.T) {
	// Without an explicit package field the generic key is the installed
	// name, never the repo name.
	m, err := ParseEntry("lazygit", "COPR:atim/lazygit")
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}

	if m.InstalledName != "lazygit" {
		t.Errorf("InstalledName = %q, want %q", m.InstalledName, "lazygit")
	}
	want := Source{Class: ClassCopr, Owner: "atim", Repo: "lazygit"}
	if !m.Source.Equal(want) {
		t.Errorf("Source = %+v, want %+v", m.Source, want)
	}
}

func TestParseEntryCoprExplicitPackageWins(t *testing.T) {
	m, err := ParseEntry("qtile-extras", "COPR:frostyx/qtile:python3-qtile-extras")
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}

	if m.InstalledName != "python3-qtile-extras" {
		t.Errorf("InstalledName = %q, want %q", m.InstalledName, "python3-qtile-extras")
	}
	if m.Source.Pkg != "python3-qtile-extras" {
		t.Errorf("Source.Pkg = %q, want %q", m.Source.Pkg, "python3-qtile-extras")
	}
}

func TestParseEntryOfficialRename(t *testing.T) {
	m, err := ParseEntry("fd", "fd-find")
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}

	if m.InstalledName != "fd-find" {
		t.Errorf("InstalledName = %q, want %q", m.InstalledName, "fd-find")
	}
	if m.Source.Class != ClassOfficial {
		t.Errorf("Source.Class = %q, want %q", m.Source.Class, ClassOfficial)
	}
}

func TestParseEntryOfficialKeyword(t *testing.T) {
	// "official" pins the generic name to the distro repositories; the
	// installed name is the key itself, not the literal keyword.
	m, err := ParseEntry("foo", "official")
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}

	if m.InstalledName != "foo" {
		t.Errorf("InstalledName = %q, want %q", m.InstalledName, "foo")
	}
	if !m.Source.Equal(Official()) {
		t.Errorf("Source = %+v, want official", m.Source)
	}
}

func TestParseEntryStripsCommentBeforeCommaSplit(t *testing.T) {
	// The comment must be removed before the comma split, otherwise
	// "stack" would parse as a third package.
	m, err := ParseEntry("qemu", "qemu-kvm,qemu-img # full virt, stack")
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}

	if m.InstalledName != "qemu-kvm" {
		t.Errorf("InstalledName = %q, want %q", m.InstalledName, "qemu-kvm")
	}
	if diff := cmp.Diff([]string{"qemu-img"}, m.AlsoInstalls); diff != "" {
		t.Errorf("AlsoInstalls mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEntryFlatpak(t *testing.T) {
	m, err := ParseEntry("spotify", "flatpak:com.spotify.Client")
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}
	if m.InstalledName != "com.spotify.Client" {
		t.Errorf("InstalledName = %q, want %q", m.InstalledName, "com.spotify.Client")
	}
	if m.Source.Remote != "flathub" {
		t.Errorf("Source.Remote = %q, want flathub (default)", m.Source.Remote)
	}

	m, err = ParseEntry("obs", "flatpak:fedora:com.obsproject.Studio")
	if err != nil {
		t.Fatalf("ParseEntry() failed: %v", err)
	}
	if m.Source.Remote != "fedora" {
		t.Errorf("Source.Remote = %q, want fedora", m.Source.Remote)
	}
	if m.InstalledName != "com.obsproject.Studio" {
		t.Errorf("InstalledName = %q, want com.obsproject.Studio", m.InstalledName)
	}
}

func TestParseEntryErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"empty value", "pkg", ""},
		{"comment-only value", "pkg", "# nothing here"},
		{"copr without slash", "pkg", "COPR:atim"},
		{"aur without package", "pkg", "AUR:"},
		{"ppa without slash", "pkg", "PPA:owner"},
		{"flatpak without app", "pkg", "flatpak:"},
		{"empty comma element", "pkg", "a,,b"},
		{"comma after tagged source", "pkg", "AUR:foo,bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEntry(tt.key, tt.value); err == nil {
				t.Errorf("ParseEntry(%q, %q) should fail", tt.key, tt.value)
			}
		})
	}
}

func TestLoadSelectsFamilySection(t *testing.T) {
	path := writeMappingFile(t, `
# global comment
[pkgmap.fedora]
lazygit=COPR:atim/lazygit
fd=fd-find

[pkgmap.arch]
lazygit=AUR:lazygit
fd=fd
`)

	table, err := Load(path, "fedora")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}

	m, ok := table.Resolve("lazygit")
	if !ok {
		t.Fatal("Resolve(lazygit) should find a mapping")
	}
	if m.Source.Class != ClassCopr {
		t.Errorf("fedora lazygit class = %q, want %q", m.Source.Class, ClassCopr)
	}

	arch, err := Load(path, "arch")
	if err != nil {
		t.Fatalf("Load(arch) failed: %v", err)
	}
	m, ok = arch.Resolve("lazygit")
	if !ok {
		t.Fatal("Resolve(lazygit) should find a mapping for arch")
	}
	if m.Source.Class != ClassAur {
		t.Errorf("arch lazygit class = %q, want %q", m.Source.Class, ClassAur)
	}
}

func TestLoadDuplicateKeyLastWins(t *testing.T) {
	path := writeMappingFile(t, `
[pkgmap.fedora]
lazygit=COPR:atim/lazygit
lazygit=lazygit
`)

	table, err := Load(path, "fedora")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	m, ok := table.Resolve("lazygit")
	if !ok {
		t.Fatal("Resolve(lazygit) should find a mapping")
	}
	if m.Source.Class != ClassOfficial {
		t.Errorf("duplicate key should resolve to the last entry, got class %q", m.Source.Class)
	}
}

func TestLoadDeterministic(t *testing.T) {
	path := writeMappingFile(t, `
[pkgmap.fedora]
lazygit=COPR:atim/lazygit
qtile-extras=COPR:frostyx/qtile:python3-qtile-extras
fd=fd-find
spotify=flatpak:com.spotify.Client
`)

	first, err := Load(path, "fedora")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	second, err := Load(path, "fedora")
	if err != nil {
		t.Fatalf("Load() (second) failed: %v", err)
	}

	if diff := cmp.Diff(first.mappings, second.mappings); diff != "" {
		t.Errorf("parsing the same file twice differs (-first +second):\n%s", diff)
	}
}

func TestLoadParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unterminated section", "[pkgmap.fedora\nlazygit=lazygit\n"},
		{"empty section name", "[]\n"},
		{"line without equals", "[pkgmap.fedora]\nnot a mapping line\n"},
		{"empty key", "[pkgmap.fedora]\n=value\n"},
		{"bad source tag", "[pkgmap.fedora]\nlazygit=COPR:atim\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMappingFile(t, tt.content)
			_, err := Load(path, "fedora")
			if err == nil {
				t.Fatal("Load() should fail")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("Load() error = %v, want *ParseError", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.conf"), "fedora")
	if err == nil {
		t.Error("Load() should fail for a missing file")
	}
}

func TestLoadEmptyTableForUnknownFamily(t *testing.T) {
	path := writeMappingFile(t, "[pkgmap.fedora]\nlazygit=COPR:atim/lazygit\n")

	table, err := Load(path, "debian")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for a family with no section", table.Len())
	}
}
