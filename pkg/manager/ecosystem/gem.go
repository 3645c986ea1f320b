package ecosystem

import (
	"context"
	"strings"
	"time"

	"sysup/internal/executor"
	"sysup/pkg/manager"
)

// Gem drives user-installed Ruby gems.
type Gem struct {
	BaseManager
}

// NewGem creates the RubyGems manager.
func NewGem(exec *executor.Executor) *Gem {
	return &Gem{
		BaseManager: NewBaseManager("gem", "RubyGems", "gem", false, exec),
	}
}

// parseGemOutdated translates `gem outdated` lines of the form
//
//	nokogiri (1.15.4 < 1.16.0)
//
// into candidates. Lines that do not match the shape are tool chatter and
// are ignored rather than failing the whole listing.
func parseGemOutdated(output string) []manager.PackageInfo {
	var pkgs []manager.PackageInfo

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, versions, ok := strings.Cut(line, " (")
		if !ok || !strings.HasSuffix(versions, ")") {
			continue
		}
		current, latest, found := strings.Cut(strings.TrimSuffix(versions, ")"), "<")
		if !found {
			continue
		}

		pkgs = append(pkgs, manager.PackageInfo{
			Name:           strings.TrimSpace(name),
			CurrentVersion: strings.TrimSpace(current),
			LatestVersion:  strings.TrimSpace(latest),
			Manager:        "gem",
		})
	}
	sortByName(pkgs)
	return pkgs
}

// CheckUpdates lists outdated gems.
func (g *Gem) CheckUpdates(ctx context.Context) ([]manager.PackageInfo, error) {
	out, err := g.Executor().Output(ctx, g.Binary(), "outdated")
	if err != nil {
		return nil, err
	}
	return parseGemOutdated(out), nil
}

// ApplyUpdates updates each offered gem.
func (g *Gem) ApplyUpdates(ctx context.Context, candidates []manager.PackageInfo, opts manager.ApplyOpts) manager.UpdateResult {
	start := time.Now()
	result := manager.UpdateResult{Manager: g.Name()}

	if opts.DryRun {
		result.Updated = append(result.Updated, candidates...)
		result.Status = manager.StatusSimulated
		result.Duration = time.Since(start)
		return result
	}

	for _, pkg := range candidates {
		if _, err := g.Executor().Apply(ctx, g.Binary(), "update", pkg.Name); err != nil {
			result.Errors = append(result.Errors, errorRecord(err))
			continue
		}
		result.Updated = append(result.Updated, pkg)
	}

	result.Status = result.DeriveStatus(false)
	result.Duration = time.Since(start)
	return result
}

// Cleanup removes older versions of updated gems.
func (g *Gem) Cleanup(ctx context.Context) error {
	_, err := g.Executor().Apply(ctx, g.Binary(), "cleanup")
	return err
}

var (
	_ manager.Manager = (*Gem)(nil)
	_ manager.Cleaner = (*Gem)(nil)
)
