package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/tracking"
)

var infoCmd = &cobra.Command{
	Use:   "info <package>",
	Short: "Show provenance of one tracked package",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	RootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	store, err := e.loadTracking()
	if err != nil {
		return fmt.Errorf("failed to load tracking store: %w", err)
	}

	p, err := store.Get(args[0])
	if err != nil {
		if errors.Is(err, tracking.ErrNotFound) {
			return fmt.Errorf("package %q is not tracked (try 'autopenguin list')", args[0])
		}
		return err
	}

	fmt.Printf("Package:    %s\n", p.InstalledName)
	if p.OriginalName != "" && p.OriginalName != p.InstalledName {
		fmt.Printf("Mapped as:  %s\n", p.OriginalName)
	}
	fmt.Printf("Source:     %s\n", p.Source)
	fmt.Printf("Class:      %s\n", p.Source.Class)
	if p.Category != "" {
		fmt.Printf("Category:   %s\n", p.Category)
	}
	if !p.InstalledAt.IsZero() {
		fmt.Printf("Installed:  %s\n", p.InstalledAt.Local().Format(time.RFC1123))
	}

	return nil
}
