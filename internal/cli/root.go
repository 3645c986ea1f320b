// Package cli implements the command-line interface for sysup.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sysup/internal/config"
	"sysup/internal/executor"
	"sysup/internal/logging"
	"sysup/internal/privilege"
	"sysup/internal/ui"
	"sysup/pkg/manager"
	"sysup/pkg/manager/ecosystem"
	"sysup/pkg/orchestrator"
)

var (
	// Global flags
	cfgFile string
	dryRun  bool
	yes     bool
	verbose bool
	noColor bool

	// Global state
	cfg      *config.Config
	exec     *executor.Executor
	registry *manager.Registry
	orch     *orchestrator.Orchestrator
)

// Build metadata - set at build time via ldflags
var (
	Version   = "0.3.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sysup",
	Short: "Update every package manager on your workstation in one run",
	Long: `Sysup orchestrates updates across the package ecosystems installed
on a developer workstation: Homebrew, the Mac App Store, npm, pip,
RubyGems, VS Code extensions, and TeX Live.

Examples:
  sysup status              # Show pending updates everywhere
  sysup update              # Update everything
  sysup update brew npm     # Update only the named managers
  sysup update --dry-run    # Show what would happen`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "assume yes to all prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(tuiCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if err == ErrAborted {
			ui.WarningMsg("%v", err)
			return orchestrator.ExitCancelled
		}
		ui.ErrorMsg("%v", err)
		return 1
	}
	return exitCode
}

// exitCode carries the run outcome from a subcommand to main. Zero unless a
// run finished with a non-success overall status.
var exitCode int

// initializeApp sets up the application state.
func initializeApp() error {
	// Load configuration
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Apply global flag overrides
	if dryRun {
		cfg.General.DryRun = true
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if noColor {
		cfg.Output.Color = false
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			ui.ErrorMsg("config: %v", e)
		}
		return fmt.Errorf("invalid configuration")
	}

	if err := logging.Setup(cfg.Output.Verbose, cfg.General.LogFile); err != nil {
		return err
	}

	// Initialize UI
	ui.Init(cfg.ShouldUseColor(), cfg.Output.Unicode)

	exec = executor.New(
		executor.WithTimeout(cfg.Timeout()),
		executor.WithDryRun(cfg.General.DryRun),
		executor.WithVerbose(cfg.Output.Verbose),
	)

	negotiator := privilege.New(
		privilege.Strategy(cfg.Sudo.Strategy),
		cfg.Sudo.Whitelist,
		exec,
		stdinIsTerminal(),
	)

	registry = manager.NewRegistry()
	if err := registerManagers(); err != nil {
		return err
	}

	orch = orchestrator.New(registry, cfg, negotiator)
	return nil
}

// registerManagers constructs the managers named in the configured order.
func registerManagers() error {
	for _, name := range cfg.General.ManagerOrder {
		mc := cfg.GetManagerConfig(name)

		var mgr manager.Manager
		switch name {
		case "brew":
			casks := mc.Casks == nil || *mc.Casks
			mgr = ecosystem.NewBrew(exec, casks)
		case "mas":
			mgr = ecosystem.NewMas(exec)
		case "npm":
			mgr = ecosystem.NewNpm(exec)
		case "pip":
			mgr = ecosystem.NewPip(exec, mc.UseUV)
		case "gem":
			mgr = ecosystem.NewGem(exec)
		case "vscode":
			mgr = ecosystem.NewVSCode(exec)
		case "texlive":
			mgr = ecosystem.NewTexLive(exec, mc.Privileged)
		default:
			return fmt.Errorf("unknown manager %q in manager_order", name)
		}

		if err := registry.Register(mgr, cfg.ManagerEnabled(name)); err != nil {
			return err
		}
	}
	return nil
}

// stdinIsTerminal reports whether an interactive terminal is attached, which
// decides whether sudo may prompt during a run.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print sysup version",
	Run: func(cmd *cobra.Command, args []string) {
		ui.InfoMsg("sysup version %s", Version)
		if Commit != "unknown" {
			ui.MutedMsg("  Commit: %s", Commit)
		}
		if BuildTime != "unknown" {
			ui.MutedMsg("  Built:  %s", BuildTime)
		}
	},
}
