// Package orchestrator drives registered managers through discovery and
// update runs and aggregates their outcomes into a single report.
package orchestrator

import (
	"time"

	"sysup/pkg/manager"
)

// Mode distinguishes a discovery-only run from a mutating one.
type Mode string

const (
	ModeStatus Mode = "status"
	ModeUpdate Mode = "update"
)

// StatusCancelled is the overall status of a run interrupted between manager
// steps. It never appears on an individual UpdateResult.
const StatusCancelled = manager.Status("cancelled")

// RunReport is the immutable record of one orchestration run. Results are in
// registry order regardless of the completion order of parallel steps.
type RunReport struct {
	StartedAt  time.Time                        `json:"started_at"`
	FinishedAt time.Time                        `json:"finished_at"`
	Mode       Mode                             `json:"mode"`
	DryRun     bool                             `json:"dry_run"`
	Cancelled  bool                             `json:"cancelled,omitempty"`
	Results    []manager.UpdateResult           `json:"results"`
	Overall    manager.Status                   `json:"overall"`
	Pending    map[string][]manager.PackageInfo `json:"pending,omitempty"`
}

// Result returns the entry for the named manager, if it was part of the run.
func (r *RunReport) Result(name string) (manager.UpdateResult, bool) {
	for _, res := range r.Results {
		if res.Manager == name {
			return res, true
		}
	}
	return manager.UpdateResult{}, false
}

// UpdatedCount sums applied packages over all results.
func (r *RunReport) UpdatedCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Updated)
	}
	return n
}

// Aggregate computes the overall status as the worst counted per-manager
// status. Unavailable and policy-skipped managers do not dominate: a run
// where nothing counted is a vacuous success, unless every manager was
// skipped, which surfaces as Skipped.
func Aggregate(results []manager.UpdateResult, dryRun bool) manager.Status {
	worst := manager.StatusSuccess
	counted := 0
	for _, res := range results {
		if !res.Status.Counted() {
			continue
		}
		counted++
		if res.Status.Severity() > worst.Severity() {
			worst = res.Status
		}
	}
	if counted == 0 {
		if len(results) > 0 {
			return manager.StatusSkipped
		}
		return manager.StatusSuccess
	}
	if dryRun && worst == manager.StatusSuccess {
		return manager.StatusSimulated
	}
	return worst
}

// Exit code contract for scripting callers.
const (
	ExitSuccess   = 0
	ExitFailed    = 1
	ExitPartial   = 2
	ExitSkipped   = 3
	ExitCancelled = 130
)

// ExitCode maps an overall status to the process exit code.
func ExitCode(overall manager.Status) int {
	switch overall {
	case StatusCancelled:
		return ExitCancelled
	case manager.StatusFailed:
		return ExitFailed
	case manager.StatusPartial:
		return ExitPartial
	case manager.StatusSkipped:
		return ExitSkipped
	default:
		return ExitSuccess
	}
}
