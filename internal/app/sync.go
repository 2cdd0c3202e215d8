package app

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/history"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/installer"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/migrate"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/output"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/repos"
)

var syncFlagYes bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Apply pending repository source changes",
	Long: `Reconcile every tracked package against the mapping file: enable new
repositories, install the mapped package, update the tracking database and
disable repositories nothing uses anymore.

Each package is confirmed interactively unless --yes is given. A package
that fails to install keeps its old tracking record, so the next sync
retries it; other packages in the same run are unaffected.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVarP(&syncFlagYes, "yes", "y", false, "apply all changes without prompting")

	RootCmd.AddCommand(syncCmd)
}

// huhConfirmer prompts per candidate with an interactive confirm dialog.
// Any prompt error (EOF, Ctrl-C) counts as a denial.
type huhConfirmer struct{}

func (huhConfirmer) Confirm(c migrate.Change) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Migrate %s?", c.Package.InstalledName)).
		Description(fmt.Sprintf("%s -> %s (%s)", c.OldSource, c.NewSource, c.Action)).
		Affirmative("Migrate").
		Negative("Skip").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func runSync(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	table, err := e.loadTable()
	if err != nil {
		return fmt.Errorf("failed to load mapping file: %w", err)
	}
	store, err := e.loadTracking()
	if err != nil {
		return fmt.Errorf("failed to load tracking store: %w", err)
	}

	changes := migrate.DetectChanges(store.List(""), table)
	fmt.Print(output.RenderChangeTable(changes))
	if len(changes) == 0 {
		return nil
	}

	var confirm migrate.Confirmer = huhConfirmer{}
	if syncFlagYes {
		confirm = migrate.AutoConfirm{}
	}

	res, err := migrate.Apply(store, changes, migrate.Options{
		Installer: installer.New(e.family),
		Repos:     repos.New(),
		Confirm:   confirm,
	})
	if err != nil {
		return err
	}

	fmt.Print(output.RenderResult(res))
	recordMigrations(e, res.AppliedChanges)
	return nil
}

// recordMigrations appends applied changes to the audit log. The log is
// best effort: a broken database must never fail a migration that already
// completed.
func recordMigrations(e *env, applied []migrate.Change) {
	if len(applied) == 0 {
		return
	}

	db, err := e.openHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to open history database: %v\n", err)
		return
	}
	defer db.Close()

	for _, c := range applied {
		ev := history.Event{
			Package:   c.Mapping.InstalledName,
			Action:    history.ActionMigrate,
			OldSource: c.OldSource.String(),
			NewSource: c.NewSource.String(),
		}
		if err := db.Record(&ev); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to record history for %s: %v\n", ev.Package, err)
		}
	}
}
