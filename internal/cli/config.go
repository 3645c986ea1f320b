package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sysup/internal/config"
	"sysup/internal/ui"
)

var (
	configInit     bool
	configValidate bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, write, or validate the configuration",
	Long: `Without flags, prints the active configuration path and settings.

Examples:
  sysup config              # Show the active configuration
  sysup config --init       # Write a default config file
  sysup config --validate   # Check the config for contradictions`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "write a default config file")
	configCmd.Flags().BoolVar(&configValidate, "validate", false, "validate the config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	switch {
	case configInit:
		return initConfigFile()
	case configValidate:
		if errs := cfg.Validate(); len(errs) > 0 {
			for _, e := range errs {
				ui.ErrorMsg("%v", e)
			}
			return fmt.Errorf("%d configuration problem(s)", len(errs))
		}
		ui.SuccessMsg("configuration is valid")
		return nil
	default:
		showConfig()
		return nil
	}
}

func initConfigFile() error {
	path := config.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := config.Default().SaveTo(path); err != nil {
		return err
	}
	ui.SuccessMsg("wrote %s", path)
	return nil
}

func showConfig() {
	ui.HeaderMsg("Configuration")
	ui.MutedMsg("  %s", config.ConfigPath())
	ui.Println("")

	ui.Println("  manager order:  %v", cfg.General.ManagerOrder)
	ui.Println("  sudo strategy:  %s", cfg.Sudo.Strategy)
	if len(cfg.Sudo.Whitelist) > 0 {
		ui.Println("  sudo whitelist: %v", cfg.Sudo.Whitelist)
	}
	ui.Println("  timeout:        %s", cfg.Timeout())
	ui.Println("  parallel:       %d", cfg.General.Parallel)
	if len(cfg.General.Exclude) > 0 {
		ui.Println("  exclude:        %v", cfg.General.Exclude)
	}

	for name, mc := range cfg.Managers {
		if mc.Enabled != nil && !*mc.Enabled {
			ui.MutedMsg("  %s: disabled", name)
		}
		if len(mc.Exclude) > 0 {
			ui.Println("  %s exclude:     %v", name, mc.Exclude)
		}
	}
}
