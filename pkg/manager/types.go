// Package manager provides the core abstraction for driving heterogeneous
// package ecosystems through a single capability contract.
package manager

import "time"

// Status represents the outcome of one manager's update attempt.
type Status string

const (
	// StatusSuccess means every offered candidate was applied without error.
	StatusSuccess Status = "success"
	// StatusPartial means some candidates were applied while others errored
	// or were skipped.
	StatusPartial Status = "partial"
	// StatusFailed means an unrecoverable error prevented any progress.
	StatusFailed Status = "failed"
	// StatusSkipped means the manager was entirely policy-skipped.
	StatusSkipped Status = "skipped"
	// StatusUnavailable means the underlying tool is not installed.
	StatusUnavailable Status = "unavailable"
	// StatusSimulated means a dry run listed what would be applied without
	// touching the system.
	StatusSimulated Status = "simulated"
	// StatusDegraded means updates succeeded but a best-effort maintenance
	// step (cleanup or self-update) failed afterwards.
	StatusDegraded Status = "degraded"
)

// severity orders statuses for worst-of aggregation. Higher is worse.
// Degraded sits between success and partial: maintenance trouble must
// surface in the overall status even though every update landed.
var severity = map[Status]int{
	StatusSkipped:     0,
	StatusUnavailable: 0,
	StatusSimulated:   1,
	StatusSuccess:     1,
	StatusDegraded:    2,
	StatusPartial:     3,
	StatusFailed:      4,
}

// Severity returns the aggregation rank of a status.
func (s Status) Severity() int {
	return severity[s]
}

// Counted reports whether the status participates in overall aggregation.
// Unavailable and policy-skipped managers never dominate a run.
func (s Status) Counted() bool {
	return s != StatusSkipped && s != StatusUnavailable
}

// PackageInfo describes one discoverable update. Version strings are opaque:
// ecosystems use incompatible schemes, so they are never parsed or compared.
type PackageInfo struct {
	Name              string `json:"name"`
	CurrentVersion    string `json:"current_version,omitempty"`
	LatestVersion     string `json:"latest_version,omitempty"`
	Manager           string `json:"manager"`
	RequiresPrivilege bool   `json:"requires_privilege,omitempty"`
}

// SkippedPackage is a candidate deliberately not applied, with the reason it
// was held back. Skips are always recorded, never silently dropped.
type SkippedPackage struct {
	Package PackageInfo `json:"package"`
	Reason  string      `json:"reason"`
}

// ErrorRecord is a structured error from an update attempt. ExitCode is the
// external tool's exit status when one is known, zero otherwise.
type ErrorRecord struct {
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code,omitempty"`
}

// UpdateResult is the outcome of one manager's attempt within a run. It is a
// value: created once per manager per run and never mutated after the attempt
// completes.
type UpdateResult struct {
	Manager  string           `json:"manager"`
	Status   Status           `json:"status"`
	Updated  []PackageInfo    `json:"updated,omitempty"`
	Skipped  []SkippedPackage `json:"skipped,omitempty"`
	Errors   []ErrorRecord    `json:"errors,omitempty"`
	Duration time.Duration    `json:"duration"`
}

// DeriveStatus computes the per-manager status from the result's contents:
// failed when errors prevented any progress, partial when progress was mixed
// with errors or skips, skipped when policy held back every candidate, and
// success otherwise.
func (r *UpdateResult) DeriveStatus(dryRun bool) Status {
	switch {
	case dryRun:
		return StatusSimulated
	case len(r.Errors) > 0 && len(r.Updated) == 0:
		return StatusFailed
	case len(r.Errors) > 0 || len(r.Skipped) > 0 && len(r.Updated) > 0:
		return StatusPartial
	case len(r.Skipped) > 0:
		return StatusSkipped
	default:
		return StatusSuccess
	}
}

// ApplyOpts carries the run policy into ApplyUpdates.
type ApplyOpts struct {
	// DryRun lists what would be applied without invoking mutating verbs.
	DryRun bool
}

// ManagerStatus is the ListManagers projection of one registered manager.
type ManagerStatus struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Available   bool   `json:"available"`
	Enabled     bool   `json:"enabled"`
}
