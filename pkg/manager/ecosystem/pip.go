package ecosystem

import (
	"context"
	"encoding/json"
	"time"

	"sysup/internal/executor"
	"sysup/pkg/manager"
)

// Pip drives user-installed python packages, either through pip itself or
// through uv's pip-compatible interface.
type Pip struct {
	BaseManager
	useUV bool
}

// NewPip creates the python manager. With useUV set, every invocation goes
// through `uv pip` instead of pip3.
func NewPip(exec *executor.Executor, useUV bool) *Pip {
	binary := "pip3"
	display := "Python (pip)"
	if useUV {
		binary = "uv"
		display = "Python (uv)"
	}
	return &Pip{
		BaseManager: NewBaseManager("pip", display, binary, false, exec),
		useUV:       useUV,
	}
}

// pipArgs prefixes the subcommand with "pip" when routing through uv.
func (p *Pip) pipArgs(args ...string) []string {
	if p.useUV {
		return append([]string{"pip"}, args...)
	}
	return args
}

// pipOutdatedEntry mirrors one element of `pip list --outdated --format=json`.
type pipOutdatedEntry struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	LatestVersion string `json:"latest_version"`
}

// parsePipOutdated translates the JSON outdated listing into candidates.
func parsePipOutdated(output []byte) ([]manager.PackageInfo, error) {
	var entries []pipOutdatedEntry
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, &manager.ParseError{Manager: "pip", Output: string(output), Err: err}
	}

	var pkgs []manager.PackageInfo
	for _, e := range entries {
		pkgs = append(pkgs, manager.PackageInfo{
			Name:           e.Name,
			CurrentVersion: e.Version,
			LatestVersion:  e.LatestVersion,
			Manager:        "pip",
		})
	}
	sortByName(pkgs)
	return pkgs, nil
}

// CheckUpdates lists outdated packages in JSON form.
func (p *Pip) CheckUpdates(ctx context.Context) ([]manager.PackageInfo, error) {
	args := p.pipArgs("list", "--outdated", "--format=json")
	out, err := p.Executor().Output(ctx, p.Binary(), args...)
	if err != nil {
		return nil, err
	}
	return parsePipOutdated([]byte(out))
}

// ApplyUpdates upgrades each offered package individually so one failing
// package cannot sink the rest.
func (p *Pip) ApplyUpdates(ctx context.Context, candidates []manager.PackageInfo, opts manager.ApplyOpts) manager.UpdateResult {
	start := time.Now()
	result := manager.UpdateResult{Manager: p.Name()}

	if opts.DryRun {
		result.Updated = append(result.Updated, candidates...)
		result.Status = manager.StatusSimulated
		result.Duration = time.Since(start)
		return result
	}

	for _, pkg := range candidates {
		args := p.pipArgs("install", "--upgrade", pkg.Name)
		if _, err := p.Executor().Apply(ctx, p.Binary(), args...); err != nil {
			result.Errors = append(result.Errors, errorRecord(err))
			continue
		}
		result.Updated = append(result.Updated, pkg)
	}

	result.Status = result.DeriveStatus(false)
	result.Duration = time.Since(start)
	return result
}

// SelfUpdate upgrades the package tool itself. uv manages its own binary, so
// self-update only applies to plain pip.
func (p *Pip) SelfUpdate(ctx context.Context) error {
	if p.useUV {
		_, err := p.Executor().Apply(ctx, p.Binary(), "self", "update")
		return err
	}
	_, err := p.Executor().Apply(ctx, p.Binary(), "install", "--upgrade", "pip")
	return err
}

var (
	_ manager.Manager     = (*Pip)(nil)
	_ manager.SelfUpdater = (*Pip)(nil)
)
