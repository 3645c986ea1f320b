package ecosystem

import (
	"context"
	"time"

	"sysup/internal/executor"
	"sysup/pkg/manager"
)

// VSCode drives Visual Studio Code extensions. The code CLI cannot
// enumerate outdated extensions: `--list-extensions` reports only installed
// versions and there is no per-extension update query. Rather than guess,
// discovery reports an empty candidate set and ApplyUpdates performs the
// bulk `--update-extensions` pass, whose outcome is all-or-nothing.
type VSCode struct {
	BaseManager
}

// NewVSCode creates the VS Code extension manager.
func NewVSCode(exec *executor.Executor) *VSCode {
	return &VSCode{
		BaseManager: NewBaseManager("vscode", "VS Code Extensions", "code", false, exec),
	}
}

// CheckUpdates returns no candidates: the code CLI offers no outdated
// listing, so there is nothing trustworthy to report in status mode.
func (v *VSCode) CheckUpdates(ctx context.Context) ([]manager.PackageInfo, error) {
	return nil, nil
}

// ApplyUpdates runs the bulk extension update. Candidates are ignored
// because the CLI has no per-extension update verb; exclusions therefore
// cannot apply here, which is inherent to the tool.
func (v *VSCode) ApplyUpdates(ctx context.Context, candidates []manager.PackageInfo, opts manager.ApplyOpts) manager.UpdateResult {
	start := time.Now()
	result := manager.UpdateResult{Manager: v.Name()}

	if opts.DryRun {
		result.Status = manager.StatusSimulated
		result.Duration = time.Since(start)
		return result
	}

	if _, err := v.Executor().Apply(ctx, v.Binary(), "--update-extensions"); err != nil {
		result.Errors = append(result.Errors, errorRecord(err))
	}

	result.Status = result.DeriveStatus(false)
	result.Duration = time.Since(start)
	return result
}

var _ manager.Manager = (*VSCode)(nil)
