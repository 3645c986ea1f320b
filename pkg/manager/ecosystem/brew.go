package ecosystem

import (
	"context"
	"encoding/json"
	"time"

	"sysup/internal/executor"
	"sysup/pkg/manager"
)

// Brew drives Homebrew formulae and casks. Casks often install privileged
// payloads (system apps), so cask candidates carry the privilege flag.
type Brew struct {
	BaseManager
	casks bool
}

// NewBrew creates the Homebrew manager. casks controls whether cask updates
// are discovered and applied alongside formulae.
func NewBrew(exec *executor.Executor, casks bool) *Brew {
	return &Brew{
		BaseManager: NewBaseManager("brew", "Homebrew", "brew", false, exec),
		casks:       casks,
	}
}

// brewOutdated mirrors the schema of `brew outdated --json=v2`.
type brewOutdated struct {
	Formulae []brewOutdatedEntry `json:"formulae"`
	Casks    []brewOutdatedEntry `json:"casks"`
}

type brewOutdatedEntry struct {
	Name              string   `json:"name"`
	InstalledVersions []string `json:"installed_versions"`
	CurrentVersion    string   `json:"current_version"`
}

// parseBrewOutdated translates the JSON outdated report into candidates.
// Pure function; unparseable output is an invocation failure, not a guess.
func parseBrewOutdated(output []byte, includeCasks bool) ([]manager.PackageInfo, error) {
	var report brewOutdated
	if err := json.Unmarshal(output, &report); err != nil {
		return nil, &manager.ParseError{Manager: "brew", Output: string(output), Err: err}
	}

	var pkgs []manager.PackageInfo
	for _, f := range report.Formulae {
		pkgs = append(pkgs, manager.PackageInfo{
			Name:           f.Name,
			CurrentVersion: firstOf(f.InstalledVersions),
			LatestVersion:  f.CurrentVersion,
			Manager:        "brew",
		})
	}
	if includeCasks {
		for _, c := range report.Casks {
			pkgs = append(pkgs, manager.PackageInfo{
				Name:              c.Name,
				CurrentVersion:    firstOf(c.InstalledVersions),
				LatestVersion:     c.CurrentVersion,
				Manager:           "brew",
				RequiresPrivilege: true,
			})
		}
	}
	return pkgs, nil
}

func firstOf(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	return versions[0]
}

// CheckUpdates discovers outdated formulae and casks via the JSON report.
// An empty report is a valid success.
func (b *Brew) CheckUpdates(ctx context.Context) ([]manager.PackageInfo, error) {
	args := []string{"outdated", "--json=v2"}
	if !b.casks {
		args = append(args, "--formula")
	}

	out, err := b.Executor().Output(ctx, b.Binary(), args...)
	if err != nil {
		return nil, err
	}
	return parseBrewOutdated([]byte(out), b.casks)
}

// ApplyUpdates upgrades the offered candidates, formulae and casks through
// their separate upgrade verbs.
func (b *Brew) ApplyUpdates(ctx context.Context, candidates []manager.PackageInfo, opts manager.ApplyOpts) manager.UpdateResult {
	start := time.Now()
	result := manager.UpdateResult{Manager: b.Name()}

	var formulae, casks []string
	for _, pkg := range candidates {
		if pkg.RequiresPrivilege {
			casks = append(casks, pkg.Name)
		} else {
			formulae = append(formulae, pkg.Name)
		}
	}

	if opts.DryRun {
		result.Updated = append(result.Updated, candidates...)
		result.Status = manager.StatusSimulated
		result.Duration = time.Since(start)
		return result
	}

	if len(formulae) > 0 {
		args := append([]string{"upgrade"}, formulae...)
		if _, err := b.Executor().Apply(ctx, b.Binary(), args...); err != nil {
			result.Errors = append(result.Errors, errorRecord(err))
		} else {
			result.Updated = append(result.Updated, byNames(candidates, formulae)...)
		}
	}

	if len(casks) > 0 {
		args := append([]string{"upgrade", "--cask"}, casks...)
		if _, err := b.Executor().Apply(ctx, b.Binary(), args...); err != nil {
			result.Errors = append(result.Errors, errorRecord(err))
		} else {
			result.Updated = append(result.Updated, byNames(candidates, casks)...)
		}
	}

	result.Status = result.DeriveStatus(false)
	result.Duration = time.Since(start)
	return result
}

// Cleanup removes stale downloads and old installed versions.
func (b *Brew) Cleanup(ctx context.Context) error {
	_, err := b.Executor().Apply(ctx, b.Binary(), "cleanup")
	return err
}

// SelfUpdate refreshes Homebrew itself and its taps.
func (b *Brew) SelfUpdate(ctx context.Context) error {
	_, err := b.Executor().Apply(ctx, b.Binary(), "update")
	return err
}

// byNames projects the candidates whose names are in the applied set,
// preserving candidate order.
func byNames(candidates []manager.PackageInfo, names []string) []manager.PackageInfo {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	var out []manager.PackageInfo
	for _, pkg := range candidates {
		if set[pkg.Name] {
			out = append(out, pkg)
		}
	}
	return out
}

var (
	_ manager.Manager     = (*Brew)(nil)
	_ manager.Cleaner     = (*Brew)(nil)
	_ manager.SelfUpdater = (*Brew)(nil)
)
