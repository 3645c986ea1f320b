package cli

import (
	"github.com/spf13/cobra"

	"sysup/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive status dashboard",
	Long: `Open an interactive dashboard showing each manager with its pending
update count. Discovery runs in the background; nothing is modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(orch)
	},
}
