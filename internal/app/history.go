package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/output"
)

var (
	historyFlagAction string
	historyFlagLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the audit log of installs, removals and migrations",
	Long: `Show what the tool has done, newest first. The audit log is separate
from the tracking database: tracking says what is installed now, history
says how it got that way.

Examples:
  # Last 50 events
  autopenguin history

  # Only migrations
  autopenguin history --action migrate`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFlagAction, "action", "", "filter by action: install, remove, migrate")
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 50, "maximum events to show (0 for all)")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	db, err := e.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	events, err := db.List(historyFlagAction, historyFlagLimit)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderHistoryTable(events))
	return nil
}
