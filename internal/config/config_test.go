package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.General.ManagerOrder) != len(DefaultManagerOrder) {
		t.Errorf("unexpected manager order: %v", cfg.General.ManagerOrder)
	}
	if cfg.Sudo.Strategy != "prompt" {
		t.Errorf("expected prompt strategy, got %s", cfg.Sudo.Strategy)
	}
	if cfg.Timeout() != 10*time.Minute {
		t.Errorf("expected 10m timeout, got %s", cfg.Timeout())
	}
	if !cfg.Managers["texlive"].Privileged {
		t.Error("texlive should default to privileged")
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("defaults should validate, got %v", errs)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults: %v", err)
	}
	if cfg.Sudo.Strategy != "prompt" {
		t.Errorf("expected default strategy, got %s", cfg.Sudo.Strategy)
	}
}

func TestLoadFrom(t *testing.T) {
	content := `
[general]
manager_order = ["brew", "pip"]
exclude = ["postgresql"]
timeout_minutes = 5
parallel = 3

[sudo]
strategy = "whitelist"
whitelist = ["brew", "tlmgr"]

[managers.pip]
use_uv = true
exclude = ["pip"]

[managers.mas]
enabled = false
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if len(cfg.General.ManagerOrder) != 2 || cfg.General.ManagerOrder[1] != "pip" {
		t.Errorf("unexpected order: %v", cfg.General.ManagerOrder)
	}
	if cfg.Timeout() != 5*time.Minute {
		t.Errorf("expected 5m timeout, got %s", cfg.Timeout())
	}
	if cfg.General.Parallel != 3 {
		t.Errorf("expected parallel 3, got %d", cfg.General.Parallel)
	}
	if cfg.Sudo.Strategy != "whitelist" || len(cfg.Sudo.Whitelist) != 2 {
		t.Errorf("unexpected sudo config: %+v", cfg.Sudo)
	}
	if !cfg.GetManagerConfig("pip").UseUV {
		t.Error("pip should use uv")
	}
	if cfg.ManagerEnabled("mas") {
		t.Error("mas should be disabled")
	}
	if !cfg.ManagerEnabled("brew") {
		t.Error("managers are enabled unless disabled")
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("config should validate, got %v", errs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid strategy", func(c *Config) { c.Sudo.Strategy = "always" }},
		{"whitelist without entries", func(c *Config) { c.Sudo.Strategy = "whitelist" }},
		{"negative timeout", func(c *Config) { c.General.TimeoutMinutes = -1 }},
		{"negative parallel", func(c *Config) { c.General.Parallel = -2 }},
		{"duplicate manager", func(c *Config) { c.General.ManagerOrder = []string{"brew", "brew"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if errs := cfg.Validate(); len(errs) == 0 {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestExcludedFor(t *testing.T) {
	cfg := Default()
	cfg.General.Exclude = []string{"postgresql"}
	cfg.Managers["pip"] = ManagerConfig{Exclude: []string{"pip", "setuptools"}}

	excluded := cfg.ExcludedFor("pip")
	for _, name := range []string{"postgresql", "pip", "setuptools"} {
		if !excluded[name] {
			t.Errorf("%s should be excluded for pip", name)
		}
	}

	brewExcluded := cfg.ExcludedFor("brew")
	if !brewExcluded["postgresql"] {
		t.Error("global exclusions apply to every manager")
	}
	if brewExcluded["pip"] {
		t.Error("per-manager exclusions must not leak across managers")
	}
}

func TestShouldUseColor(t *testing.T) {
	cfg := Default()

	t.Setenv("NO_COLOR", "")
	if !cfg.ShouldUseColor() {
		t.Error("color should be on by default")
	}

	t.Setenv("NO_COLOR", "1")
	if cfg.ShouldUseColor() {
		t.Error("NO_COLOR must win over config")
	}
}
