// Package ecosystem implements the capability contract for each supported
// package ecosystem. Every manager drives its external tool exclusively
// through the shared executor.
package ecosystem

import (
	"errors"
	"sort"

	"sysup/internal/executor"
	"sysup/pkg/manager"
)

// BaseManager provides the common identity and executor plumbing shared by
// all ecosystem managers.
type BaseManager struct {
	name        string
	displayName string
	binary      string
	privileged  bool
	exec        *executor.Executor
}

// NewBaseManager creates a BaseManager with the given identity.
func NewBaseManager(name, displayName, binary string, privileged bool, exec *executor.Executor) BaseManager {
	return BaseManager{
		name:        name,
		displayName: displayName,
		binary:      binary,
		privileged:  privileged,
		exec:        exec,
	}
}

// Name returns the short identifier for this manager.
func (b *BaseManager) Name() string {
	return b.name
}

// DisplayName returns the human-readable name.
func (b *BaseManager) DisplayName() string {
	return b.displayName
}

// Binary returns the primary binary name for this manager.
func (b *BaseManager) Binary() string {
	return b.binary
}

// IsAvailable reports whether the underlying tool binary resolves on PATH.
// A pure presence probe: fast and side-effect-free.
func (b *BaseManager) IsAvailable() bool {
	return b.exec.LookPath(b.binary)
}

// Privileged reports whether this manager's updates require elevation.
func (b *BaseManager) Privileged() bool {
	return b.privileged
}

// Executor returns the execution adapter.
func (b *BaseManager) Executor() *executor.Executor {
	return b.exec
}

// sortByName orders candidates by package name so that repeated discovery
// of the same system state yields the same sequence.
func sortByName(pkgs []manager.PackageInfo) {
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Name < pkgs[j].Name })
}

// errorRecord translates an invocation error into a structured record,
// preserving the tool's exit code when one is known.
func errorRecord(err error) manager.ErrorRecord {
	rec := manager.ErrorRecord{Message: err.Error()}
	var invErr *executor.InvocationError
	if errors.As(err, &invErr) {
		rec.ExitCode = invErr.ExitCode
	}
	return rec
}
