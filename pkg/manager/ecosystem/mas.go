package ecosystem

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sysup/internal/executor"
	"sysup/pkg/manager"
)

// Mas drives the Mac App Store through the mas CLI. App identifiers are
// numeric store ids; the human-readable name is kept for reporting. The
// manager is stateless, so ApplyUpdates resolves names back to ids through
// the read-only `mas list` verb instead of remembering discovery output.
type Mas struct {
	BaseManager
}

// NewMas creates the Mac App Store manager.
func NewMas(exec *executor.Executor) *Mas {
	return &Mas{
		BaseManager: NewBaseManager("mas", "Mac App Store", "mas", false, exec),
	}
}

// parseMasApps translates mas listing lines of the form
//
//	497799835 Xcode (14.0 -> 14.1)
//	497799835 Xcode (14.0)
//
// into candidates. The parenthesized version suffix is optional arrow
// notation for outdated listings.
func parseMasApps(output string) ([]manager.PackageInfo, map[string]string, error) {
	var pkgs []manager.PackageInfo
	ids := make(map[string]string)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		id, rest, ok := strings.Cut(line, " ")
		if !ok {
			return nil, nil, &manager.ParseError{Manager: "mas", Output: line, Err: fmt.Errorf("missing app id")}
		}

		name := rest
		var current, latest string
		if open := strings.LastIndex(rest, "("); open >= 0 && strings.HasSuffix(rest, ")") {
			name = strings.TrimSpace(rest[:open])
			versions := rest[open+1 : len(rest)-1]
			if cur, next, found := strings.Cut(versions, "->"); found {
				current = strings.TrimSpace(cur)
				latest = strings.TrimSpace(next)
			} else {
				current = strings.TrimSpace(versions)
			}
		}

		pkgs = append(pkgs, manager.PackageInfo{
			Name:           name,
			CurrentVersion: current,
			LatestVersion:  latest,
			Manager:        "mas",
		})
		ids[name] = id
	}
	return pkgs, ids, nil
}

// CheckUpdates lists outdated App Store apps.
func (m *Mas) CheckUpdates(ctx context.Context) ([]manager.PackageInfo, error) {
	out, err := m.Executor().Output(ctx, m.Binary(), "outdated")
	if err != nil {
		return nil, err
	}

	pkgs, _, err := parseMasApps(out)
	return pkgs, err
}

// installedIDs resolves app names to store ids from the installed listing.
func (m *Mas) installedIDs(ctx context.Context) (map[string]string, error) {
	out, err := m.Executor().Output(ctx, m.Binary(), "list")
	if err != nil {
		return nil, err
	}
	_, ids, err := parseMasApps(out)
	return ids, err
}

// ApplyUpdates upgrades each offered app by store id. An app that cannot be
// resolved to an id is skipped with a reason rather than guessed.
func (m *Mas) ApplyUpdates(ctx context.Context, candidates []manager.PackageInfo, opts manager.ApplyOpts) manager.UpdateResult {
	start := time.Now()
	result := manager.UpdateResult{Manager: m.Name()}

	if opts.DryRun {
		result.Updated = append(result.Updated, candidates...)
		result.Status = manager.StatusSimulated
		result.Duration = time.Since(start)
		return result
	}

	ids, err := m.installedIDs(ctx)
	if err != nil {
		result.Errors = append(result.Errors, errorRecord(err))
		result.Status = manager.StatusFailed
		result.Duration = time.Since(start)
		return result
	}

	for _, pkg := range candidates {
		id, ok := ids[pkg.Name]
		if !ok {
			result.Skipped = append(result.Skipped, manager.SkippedPackage{
				Package: pkg,
				Reason:  "app not found in installed listing",
			})
			continue
		}
		if _, err := m.Executor().Apply(ctx, m.Binary(), "upgrade", id); err != nil {
			result.Errors = append(result.Errors, errorRecord(err))
			continue
		}
		result.Updated = append(result.Updated, pkg)
	}

	result.Status = result.DeriveStatus(false)
	result.Duration = time.Since(start)
	return result
}

var _ manager.Manager = (*Mas)(nil)
