package ecosystem

import (
	"context"
	"encoding/json"
	"time"

	"sysup/internal/executor"
	"sysup/pkg/manager"
)

// Npm drives globally installed npm packages.
type Npm struct {
	BaseManager
}

// NewNpm creates the npm manager. Only global packages are in scope;
// project-local dependencies belong to their projects.
func NewNpm(exec *executor.Executor) *Npm {
	return &Npm{
		BaseManager: NewBaseManager("npm", "npm (global)", "npm", false, exec),
	}
}

// npmOutdatedEntry mirrors one value of `npm outdated --global --json`.
type npmOutdatedEntry struct {
	Current string `json:"current"`
	Wanted  string `json:"wanted"`
	Latest  string `json:"latest"`
}

// parseNpmOutdated translates the JSON outdated map into candidates. npm
// emits an empty document when everything is current.
func parseNpmOutdated(output []byte) ([]manager.PackageInfo, error) {
	trimmed := string(output)
	if trimmed == "" || trimmed == "{}" || trimmed == "{}\n" {
		return nil, nil
	}

	var entries map[string]npmOutdatedEntry
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, &manager.ParseError{Manager: "npm", Output: string(output), Err: err}
	}

	var pkgs []manager.PackageInfo
	for name, e := range entries {
		pkgs = append(pkgs, manager.PackageInfo{
			Name:           name,
			CurrentVersion: e.Current,
			LatestVersion:  e.Latest,
			Manager:        "npm",
		})
	}
	sortByName(pkgs)
	return pkgs, nil
}

// CheckUpdates lists outdated global packages. npm exits nonzero when any
// package is outdated, so a nonzero exit with parseable stdout is still a
// successful discovery.
func (n *Npm) CheckUpdates(ctx context.Context) ([]manager.PackageInfo, error) {
	out, err := n.Executor().Output(ctx, n.Binary(), "outdated", "--global", "--json")
	if err != nil && out == "" {
		return nil, err
	}
	return parseNpmOutdated([]byte(out))
}

// ApplyUpdates reinstalls each offered package at its latest version.
func (n *Npm) ApplyUpdates(ctx context.Context, candidates []manager.PackageInfo, opts manager.ApplyOpts) manager.UpdateResult {
	start := time.Now()
	result := manager.UpdateResult{Manager: n.Name()}

	if opts.DryRun {
		result.Updated = append(result.Updated, candidates...)
		result.Status = manager.StatusSimulated
		result.Duration = time.Since(start)
		return result
	}

	for _, pkg := range candidates {
		if _, err := n.Executor().Apply(ctx, n.Binary(), "install", "--global", pkg.Name+"@latest"); err != nil {
			result.Errors = append(result.Errors, errorRecord(err))
			continue
		}
		result.Updated = append(result.Updated, pkg)
	}

	result.Status = result.DeriveStatus(false)
	result.Duration = time.Since(start)
	return result
}

// SelfUpdate brings npm itself to the latest release.
func (n *Npm) SelfUpdate(ctx context.Context) error {
	_, err := n.Executor().Apply(ctx, n.Binary(), "install", "--global", "npm@latest")
	return err
}

var (
	_ manager.Manager     = (*Npm)(nil)
	_ manager.SelfUpdater = (*Npm)(nil)
)
