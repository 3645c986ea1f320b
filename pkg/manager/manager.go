package manager

import "context"

// Manager is the capability contract every package ecosystem implements.
// Implementations must be stateless between invocations: they own nothing
// beyond the UpdateResult they return, so re-running a process is safe and
// reproducible.
type Manager interface {
	// Name returns the short identifier for this manager (e.g., "brew").
	Name() string

	// DisplayName returns a human-readable name (e.g., "Homebrew").
	DisplayName() string

	// IsAvailable reports whether the underlying tool is installed and
	// usable. It must be fast and side-effect-free; false short-circuits
	// every other call for this manager in the current run.
	IsAvailable() bool

	// CheckUpdates discovers available updates without mutating system
	// state. An empty slice is a valid success, not an error. Safe to call
	// repeatedly.
	CheckUpdates(ctx context.Context) ([]PackageInfo, error)

	// ApplyUpdates attempts to bring every candidate up to date. With
	// opts.DryRun set it performs no mutating action and returns a result
	// whose Updated field lists what would be applied, with status
	// Simulated.
	ApplyUpdates(ctx context.Context, candidates []PackageInfo, opts ApplyOpts) UpdateResult
}

// Cleaner is the optional cleanup capability: best-effort removal of stale
// artifacts. A cleanup failure never fails the run; it only downgrades the
// manager's status to degraded.
type Cleaner interface {
	Cleanup(ctx context.Context) error
}

// SelfUpdater is the optional self-update capability. It runs after
// ApplyUpdates for the manager, since an in-place self-update can invalidate
// the tool's own in-flight state.
type SelfUpdater interface {
	SelfUpdate(ctx context.Context) error
}
