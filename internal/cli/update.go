package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"

	"sysup/internal/history"
	"sysup/internal/privilege"
	"sysup/internal/ui"
	"sysup/pkg/orchestrator"
)

var updateCmd = &cobra.Command{
	Use:   "update [managers...]",
	Short: "Update packages across all managers",
	Long: `Run a full update across the configured package managers: discover
pending updates, apply them, then run each manager's cleanup and
self-update.

Examples:
  sysup update              # Update everything
  sysup update brew gem     # Update only the named managers
  sysup update -n           # Dry run
  sysup update -y           # Skip the confirmation prompt`,
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dry := cfg.General.DryRun

	if !dry && !yes {
		confirmed, err := ui.Confirm("Update all pending packages?", true)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	// Under the prompt strategy sudo asks for a password up front, before
	// any spinner owns the terminal. Privileged steps then find a warm
	// credential cache.
	if !dry && privilege.Strategy(cfg.Sudo.Strategy) == privilege.StrategyPrompt && stdinIsTerminal() {
		if err := exec.WarmSudo(ctx); err != nil {
			log.Debugf("sudo warm-up declined: %v", err)
		}
	}

	report, err := orch.RunUpdate(ctx, args, dry)
	if err != nil {
		return err
	}

	ui.PrintReport(report)
	recordRun(report)

	exitCode = orchestrator.ExitCode(report.Overall)
	return nil
}

// recordRun journals a finished run. Journal failures are reported but never
// change the run outcome.
func recordRun(report *orchestrator.RunReport) {
	store, err := history.Open()
	if err != nil {
		log.Warnf("history unavailable: %v", err)
		return
	}
	defer store.Close()

	if err := store.Record(history.NewRecord(report)); err != nil {
		log.Warnf("failed to record run: %v", err)
	}
}
