package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sysup/internal/history"
	"sysup/internal/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous runs",
	Long: `Display the journal of previous update runs.

Examples:
  sysup history             # Show recent runs
  sysup history -l 20       # Show last 20 runs`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 10, "number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	records, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(records) == 0 {
		ui.MutedMsg("No runs recorded yet")
		return nil
	}

	ui.HeaderMsg("Run History")

	for i, rec := range records {
		mode := rec.Mode
		if rec.DryRun {
			mode += " (dry-run)"
		}

		fmt.Printf("%2d. %s %s %d updated [%s]\n",
			i+1,
			ui.Muted.Sprint(rec.FormatTime()),
			ui.Bold(mode),
			rec.UpdatedCount(),
			ui.StatusString(rec.Overall),
		)

		for _, m := range rec.Managers {
			if m.Updated == 0 && m.Skipped == 0 && m.Errors == 0 {
				continue
			}
			ui.MutedMsg("    %s: %d updated, %d skipped, %d error(s)",
				m.Manager, m.Updated, m.Skipped, m.Errors)
		}
	}

	total, _ := store.Count()
	ui.MutedMsg("\nShowing %d of %d total runs", len(records), total)

	return nil
}
