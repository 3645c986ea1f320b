package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sysup/internal/ui"
	"sysup/pkg/orchestrator"
)

var statusCmd = &cobra.Command{
	Use:   "status [managers...]",
	Short: "Show pending updates without changing anything",
	Long: `Check each configured package manager for pending updates.

Examples:
  sysup status              # Check every enabled manager
  sysup status brew pip     # Check only the named managers`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var report *orchestrator.RunReport
	err := ui.WithSpinner("Checking for updates...", func() error {
		var err error
		report, err = orch.RunStatus(ctx, args)
		return err
	})
	if err != nil {
		return err
	}

	ui.PrintPending(report)

	exitCode = orchestrator.ExitCode(report.Overall)
	return nil
}
