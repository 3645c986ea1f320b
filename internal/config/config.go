// Package config loads and validates the sysup configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"sysup/internal/privilege"
)

// Config represents the complete sysup configuration. The orchestrator
// treats it as a fully-resolved, validated structure.
type Config struct {
	General  GeneralConfig            `toml:"general"`
	Sudo     SudoConfig               `toml:"sudo"`
	Output   OutputConfig             `toml:"output"`
	Managers map[string]ManagerConfig `toml:"managers"`
}

// GeneralConfig contains run-wide settings.
type GeneralConfig struct {
	// ManagerOrder declares which managers run and in what order. The order
	// is stable across runs so reports diff cleanly.
	ManagerOrder []string `toml:"manager_order"`

	// Exclude lists package names excluded from updates in every manager.
	Exclude []string `toml:"exclude"`

	// DryRun shows what would happen without executing when true.
	DryRun bool `toml:"dry_run"`

	// TimeoutMinutes bounds each external tool invocation.
	TimeoutMinutes int `toml:"timeout_minutes"`

	// Parallel bounds how many managers run concurrently. Zero or one
	// means strictly sequential.
	Parallel int `toml:"parallel"`

	// LogFile appends timestamped run logs to the given path when set.
	LogFile string `toml:"log_file"`
}

// SudoConfig controls privileged operation negotiation.
type SudoConfig struct {
	// Strategy is one of: prompt, passwordless, whitelist, skip.
	Strategy string `toml:"strategy"`

	// Whitelist lists command prefixes allowed under the whitelist
	// strategy (e.g., ["brew", "tlmgr"]).
	Whitelist []string `toml:"whitelist"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	// Color enables colored output (respects NO_COLOR env var).
	Color bool `toml:"color"`

	// Unicode enables unicode symbols in output.
	Unicode bool `toml:"unicode"`

	// Verbose enables detailed output.
	Verbose bool `toml:"verbose"`
}

// ManagerConfig contains per-manager settings.
type ManagerConfig struct {
	// Enabled toggles the manager without removing it from the order.
	Enabled *bool `toml:"enabled"`

	// Exclude lists package names excluded for this manager only.
	Exclude []string `toml:"exclude"`

	// Casks includes Homebrew casks in discovery and updates. Brew only.
	Casks *bool `toml:"casks"`

	// UseUV routes python package operations through uv. Pip only.
	UseUV bool `toml:"use_uv"`

	// Privileged marks every update from this manager as requiring
	// elevated permission (e.g., a system-tree TeX Live).
	Privileged bool `toml:"privileged"`
}

// DefaultManagerOrder is the declaration order used when the config does not
// specify one.
var DefaultManagerOrder = []string{"brew", "mas", "npm", "pip", "gem", "vscode", "texlive"}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			ManagerOrder:   append([]string(nil), DefaultManagerOrder...),
			TimeoutMinutes: 10,
			Parallel:       1,
		},
		Sudo: SudoConfig{
			Strategy: string(privilege.StrategyPrompt),
		},
		Output: OutputConfig{
			Color:   true,
			Unicode: true,
		},
		Managers: map[string]ManagerConfig{
			"texlive": {Privileged: true},
		},
	}
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads the configuration from a specific path. A missing file
// yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// Validate checks the configuration for contradictions before a run starts.
// These are the only errors raised to the caller rather than folded into a
// manager's result.
func (c *Config) Validate() []error {
	var errs []error

	if !privilege.Strategy(c.Sudo.Strategy).Valid() {
		errs = append(errs, fmt.Errorf("invalid sudo strategy %q", c.Sudo.Strategy))
	}
	if privilege.Strategy(c.Sudo.Strategy) == privilege.StrategyWhitelist && len(c.Sudo.Whitelist) == 0 {
		errs = append(errs, fmt.Errorf("sudo strategy %q requires a non-empty whitelist", c.Sudo.Strategy))
	}
	if c.General.TimeoutMinutes < 0 {
		errs = append(errs, fmt.Errorf("timeout_minutes must not be negative"))
	}
	if c.General.Parallel < 0 {
		errs = append(errs, fmt.Errorf("parallel must not be negative"))
	}

	seen := make(map[string]bool)
	for _, name := range c.General.ManagerOrder {
		if seen[name] {
			errs = append(errs, fmt.Errorf("manager %q listed twice in manager_order", name))
		}
		seen[name] = true
	}

	return errs
}

// ManagerEnabled reports whether the named manager should run. Managers are
// enabled unless explicitly disabled.
func (c *Config) ManagerEnabled(name string) bool {
	mc, ok := c.Managers[name]
	if !ok || mc.Enabled == nil {
		return true
	}
	return *mc.Enabled
}

// GetManagerConfig returns the configuration for a specific manager, empty
// when none exists.
func (c *Config) GetManagerConfig(name string) ManagerConfig {
	if mc, ok := c.Managers[name]; ok {
		return mc
	}
	return ManagerConfig{}
}

// Timeout returns the per-invocation timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.General.TimeoutMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.General.TimeoutMinutes) * time.Minute
}

// ExcludedFor returns the union of the global and per-manager exclusion
// sets for a manager, keyed by exact package name.
func (c *Config) ExcludedFor(name string) map[string]bool {
	out := make(map[string]bool)
	for _, pkg := range c.General.Exclude {
		out[pkg] = true
	}
	for _, pkg := range c.GetManagerConfig(name).Exclude {
		out[pkg] = true
	}
	return out
}

// ShouldUseColor returns true if colored output should be used.
// Respects the NO_COLOR environment variable.
func (c *Config) ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return c.Output.Color
}
