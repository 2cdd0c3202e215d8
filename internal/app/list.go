package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/output"
)

var listFlagSource string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked packages",
	Long: `List every package the tool has installed, with its repository source.

The --source filter is case-insensitive: --source aur and --source AUR
select the same packages.

Examples:
  # All tracked packages
  autopenguin list

  # Only COPR packages
  autopenguin list --source copr`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFlagSource, "source", "", "filter by repository class: official, copr, aur, ppa, flatpak")

	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	store, err := e.loadTracking()
	if err != nil {
		return fmt.Errorf("failed to load tracking store: %w", err)
	}

	fmt.Print(output.RenderTrackedTable(store.List(listFlagSource)))
	return nil
}
