package ecosystem

import (
	"context"
	"strings"
	"time"

	"sysup/internal/executor"
	"sysup/pkg/manager"
)

// TexLive drives TeX Live through tlmgr. System-tree installations are
// root-owned, so the whole manager can be flagged privileged from config.
type TexLive struct {
	BaseManager
}

// NewTexLive creates the TeX Live manager.
func NewTexLive(exec *executor.Executor, privileged bool) *TexLive {
	return &TexLive{
		BaseManager: NewBaseManager("texlive", "TeX Live", "tlmgr", privileged, exec),
	}
}

// parseTlmgrUpdates translates `tlmgr update --list` report lines of the form
//
//	update:   hyperref             [1234k]: local:  2023, source: 2024
//
// into candidates. Non-update lines (chatter, self-update notices) are
// ignored.
func parseTlmgrUpdates(output string, privileged bool) []manager.PackageInfo {
	var pkgs []manager.PackageInfo

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "update:") {
			continue
		}

		fields := strings.Fields(strings.TrimPrefix(line, "update:"))
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if name == "texlive.infra" {
			// Infrastructure updates belong to SelfUpdate.
			continue
		}

		pkg := manager.PackageInfo{
			Name:              name,
			Manager:           "texlive",
			RequiresPrivilege: privileged,
		}
		if local, source, ok := splitTlmgrVersions(line); ok {
			pkg.CurrentVersion = local
			pkg.LatestVersion = source
		}
		pkgs = append(pkgs, pkg)
	}
	sortByName(pkgs)
	return pkgs
}

// splitTlmgrVersions extracts the "local: X, source: Y" revision pair.
func splitTlmgrVersions(line string) (local, source string, ok bool) {
	_, rest, found := strings.Cut(line, "local:")
	if !found {
		return "", "", false
	}
	local, rest, found = strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	_, source, found = strings.Cut(rest, "source:")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(local), strings.TrimSpace(source), true
}

// CheckUpdates lists pending package updates without applying them.
func (t *TexLive) CheckUpdates(ctx context.Context) ([]manager.PackageInfo, error) {
	out, err := t.Executor().Output(ctx, t.Binary(), "update", "--list")
	if err != nil {
		return nil, err
	}
	return parseTlmgrUpdates(out, t.Privileged()), nil
}

// ApplyUpdates updates the offered packages in one tlmgr invocation.
func (t *TexLive) ApplyUpdates(ctx context.Context, candidates []manager.PackageInfo, opts manager.ApplyOpts) manager.UpdateResult {
	start := time.Now()
	result := manager.UpdateResult{Manager: t.Name()}

	if opts.DryRun {
		result.Updated = append(result.Updated, candidates...)
		result.Status = manager.StatusSimulated
		result.Duration = time.Since(start)
		return result
	}

	if len(candidates) > 0 {
		names := make([]string, len(candidates))
		for i, pkg := range candidates {
			names[i] = pkg.Name
		}

		args := append([]string{"update"}, names...)
		var err error
		if t.Privileged() {
			_, err = t.Executor().ApplySudo(ctx, t.Binary(), args...)
		} else {
			_, err = t.Executor().Apply(ctx, t.Binary(), args...)
		}
		if err != nil {
			result.Errors = append(result.Errors, errorRecord(err))
		} else {
			result.Updated = append(result.Updated, candidates...)
		}
	}

	result.Status = result.DeriveStatus(false)
	result.Duration = time.Since(start)
	return result
}

// SelfUpdate updates the tlmgr infrastructure itself.
func (t *TexLive) SelfUpdate(ctx context.Context) error {
	var err error
	if t.Privileged() {
		_, err = t.Executor().ApplySudo(ctx, t.Binary(), "update", "--self")
	} else {
		_, err = t.Executor().Apply(ctx, t.Binary(), "update", "--self")
	}
	return err
}

var (
	_ manager.Manager     = (*TexLive)(nil)
	_ manager.SelfUpdater = (*TexLive)(nil)
)
