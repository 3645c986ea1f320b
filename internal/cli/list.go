package cli

import (
	"github.com/spf13/cobra"

	"sysup/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured managers",
	Long: `Show every manager in the configured order with its availability on
this machine and whether it is enabled.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	ui.PrintManagers(orch.ListManagers())
	return nil
}
