// Package output renders terminal tables for tracked packages, pending
// source changes, migration results and the audit log. All tables use plain
// ASCII with ANSI colors gated behind NO_COLOR and TTY detection.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/history"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/migrate"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/pkgmap"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/tracking"
)

// ANSI color codes for source class and action display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// classColor picks a color per repository class.
func classColor(c pkgmap.Class) string {
	switch c {
	case pkgmap.ClassOfficial:
		return colorGreen
	case pkgmap.ClassCopr, pkgmap.ClassPpa:
		return colorYellow
	case pkgmap.ClassAur, pkgmap.ClassFlatpak:
		return colorCyan
	default:
		return colorGray
	}
}

// colorizePadded pads s to width first, then wraps it in color codes, so
// ANSI escapes never break column alignment.
func colorizePadded(s, color string, width int) string {
	padded := fmt.Sprintf("%-*s", width, s)
	if !IsColorEnabled() {
		return padded
	}
	return color + padded + colorReset
}

// formatAge renders a timestamp as a short relative age.
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := time.Since(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// RenderTrackedTable renders the tracking store contents.
func RenderTrackedTable(pkgs []tracking.Package) string {
	if len(pkgs) == 0 {
		return "No tracked packages.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-28s %-28s %-10s %-12s %s\n",
		"PACKAGE", "SOURCE", "CLASS", "CATEGORY", "INSTALLED"))
	sb.WriteString(strings.Repeat("-", 92) + "\n")

	for _, p := range pkgs {
		sb.WriteString(fmt.Sprintf("%-28s %-28s %s %-12s %s\n",
			truncate(p.InstalledName, 28),
			truncate(p.Source.String(), 28),
			colorizePadded(string(p.Source.Class), classColor(p.Source.Class), 10),
			truncate(p.Category, 12),
			formatAge(p.InstalledAt)))
	}

	sb.WriteString(fmt.Sprintf("\n%d tracked packages\n", len(pkgs)))
	return sb.String()
}

// RenderChangeTable renders pending migration candidates.
func RenderChangeTable(changes []migrate.Change) string {
	if len(changes) == 0 {
		return "No pending source changes.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-24s %-26s %-26s %s\n",
		"PACKAGE", "CURRENT SOURCE", "NEW SOURCE", "ACTION"))
	sb.WriteString(strings.Repeat("-", 92) + "\n")

	for _, c := range changes {
		color := colorYellow
		if c.Action == migrate.ActionReinstall {
			color = colorCyan
		}
		sb.WriteString(fmt.Sprintf("%-24s %-26s %-26s %s\n",
			truncate(c.Package.InstalledName, 24),
			truncate(c.OldSource.String(), 26),
			truncate(c.NewSource.String(), 26),
			colorizePadded(string(c.Action), color, 14)))
	}

	sb.WriteString(fmt.Sprintf("\n%d pending changes\n", len(changes)))
	return sb.String()
}

// RenderResult renders a migration run summary. Every run reports how many
// packages were planned, applied, skipped and failed, with per-failure
// reasons.
func RenderResult(res migrate.Result) string {
	var sb strings.Builder

	sb.WriteString("\nMigration summary:\n")
	sb.WriteString(fmt.Sprintf("  Planned: %d\n", res.Planned))
	sb.WriteString(fmt.Sprintf("  Applied: %d\n", res.Applied))
	sb.WriteString(fmt.Sprintf("  Skipped: %d\n", res.Skipped))
	sb.WriteString(fmt.Sprintf("  Failed:  %d\n", len(res.Failures)))

	if len(res.Failures) > 0 {
		sb.WriteString("\nFailures:\n")
		for _, f := range res.Failures {
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", f.Package, f.Reason))
		}
	}

	return sb.String()
}

// RenderHistoryTable renders audit log events.
func RenderHistoryTable(events []*history.Event) string {
	if len(events) == 0 {
		return "No history recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-20s %-24s %-10s %-24s %s\n",
		"WHEN", "PACKAGE", "ACTION", "OLD SOURCE", "NEW SOURCE"))
	sb.WriteString(strings.Repeat("-", 104) + "\n")

	for _, e := range events {
		sb.WriteString(fmt.Sprintf("%-20s %-24s %-10s %-24s %s\n",
			e.At.Local().Format("2006-01-02 15:04:05"),
			truncate(e.Package, 24),
			e.Action,
			truncate(orDash(e.OldSource), 24),
			orDash(e.NewSource)))
	}

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens s to max characters, marking the cut with "...".
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
