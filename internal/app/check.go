package app

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/migrate"
	"github.com/Cyber-Syntax/auto-penguin-setup-sub001/internal/output"
)

var checkFlagWatch bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report pending repository source changes",
	Long: `Compare the tracking database against the current mapping file and report
every package whose repository source diverged. Report-only: nothing is
installed, removed or toggled.

With --watch the report re-runs whenever the mapping file is edited, which
is handy while reworking the file. Stop with Ctrl-C.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkFlagWatch, "watch", false, "re-report whenever the mapping file changes")

	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	if err := reportChanges(e); err != nil {
		return err
	}
	if !checkFlagWatch {
		return nil
	}

	return watchMappingFile(e)
}

// reportChanges loads both stores, diffs them and prints the result.
func reportChanges(e *env) error {
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
	if len(changes) > 0 {
		fmt.Println("\nRun 'autopenguin sync' to apply.")
	}
	return nil
}

// watchMappingFile re-runs the report on every edit of the mapping file
// until interrupted. The watch is on the directory, not the file: most
// editors replace the file by rename, which would invalidate a file watch.
func watchMappingFile(e *env) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	mapping := filepath.Clean(e.cfg.MappingPath)
	if err := watcher.Add(filepath.Dir(mapping)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(mapping), err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	fmt.Printf("\nWatching %s (Ctrl-C to stop)\n", mapping)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != mapping {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Editors often fire several events per save.
			time.Sleep(200 * time.Millisecond)
			drainEvents(watcher)

			fmt.Printf("\n--- mapping file changed at %s ---\n", time.Now().Format("15:04:05"))
			if err := reportChanges(e); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-sig:
			fmt.Println("\nStopped watching.")
			return nil
		}
	}
}

// drainEvents discards events queued during the debounce sleep.
func drainEvents(w *fsnotify.Watcher) {
	for {
		select {
		case <-w.Events:
		default:
			return
		}
	}
}
