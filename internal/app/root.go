package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagMapping  string
	flagTracking string
	flagDistro   string
	flagDB       string

	// RootCmd is the root command for autopenguin
	RootCmd = &cobra.Command{
		Use:   "autopenguin",
		Short: "Track package provenance and migrate repository sources",
		Long: `autopenguin tracks which repository every package was installed from
(official, COPR, AUR, PPA, flatpak) and reconciles the local tracking
database against your package mapping file when repository sources change.

Quick Start:
  1. Edit your mapping file (autopenguin check tells you where it lives)
  2. autopenguin check       # report pending source changes
  3. autopenguin sync        # apply them, confirming each package

Examples:
  # List everything installed from COPR
  autopenguin list --source copr

  # Show provenance of one package
  autopenguin info lazygit

  # Re-report pending changes whenever the mapping file is edited
  autopenguin check --watch

  # Apply all pending changes without prompting
  autopenguin sync --yes

  # Review what the tool has done
  autopenguin history`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("autopenguin: package provenance tracking and repository migration")
			fmt.Println()
			fmt.Println("Run 'autopenguin check' to see pending source changes.")
			fmt.Println("Run 'autopenguin --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ~/.config/autopenguin/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&flagMapping, "mapping", "", "mapping file (default: ~/.config/autopenguin/package_mappings.conf)")
	RootCmd.PersistentFlags().StringVar(&flagTracking, "tracking", "", "tracking file (default: ~/.local/share/autopenguin/tracked_packages)")
	RootCmd.PersistentFlags().StringVar(&flagDistro, "distro", "", "distro family override: fedora, arch, debian (default: detected)")
	RootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "history database path (default: ~/.local/share/autopenguin/history.db)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
