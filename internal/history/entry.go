// Package history journals completed runs with BoltDB.
package history

import (
	"fmt"
	"time"

	"sysup/pkg/manager"
	"sysup/pkg/orchestrator"
)

// ManagerOutcome is the per-manager summary kept in the journal. Full package
// lists stay in the run output; the journal records counts.
type ManagerOutcome struct {
	Manager string         `json:"manager"`
	Status  manager.Status `json:"status"`
	Updated int            `json:"updated"`
	Skipped int            `json:"skipped"`
	Errors  int            `json:"errors"`
}

// Record is one completed run in the journal.
type Record struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Mode       string           `json:"mode"`
	DryRun     bool             `json:"dry_run"`
	Overall    manager.Status   `json:"overall"`
	Managers   []ManagerOutcome `json:"managers"`
}

// NewRecord summarizes a finished run report for journaling.
func NewRecord(report *orchestrator.RunReport) *Record {
	rec := &Record{
		ID:         report.StartedAt.Format("20060102150405.000000"),
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Mode:       string(report.Mode),
		DryRun:     report.DryRun,
		Overall:    report.Overall,
	}
	for _, res := range report.Results {
		rec.Managers = append(rec.Managers, ManagerOutcome{
			Manager: res.Manager,
			Status:  res.Status,
			Updated: len(res.Updated),
			Skipped: len(res.Skipped),
			Errors:  len(res.Errors),
		})
	}
	return rec
}

// UpdatedCount sums applied packages over all managers in the run.
func (r *Record) UpdatedCount() int {
	n := 0
	for _, m := range r.Managers {
		n += m.Updated
	}
	return n
}

// FormatTime returns a human-readable timestamp.
func (r *Record) FormatTime() string {
	return r.StartedAt.Format("2006-01-02 15:04:05")
}

// Summary returns a one-line description of the run.
func (r *Record) Summary() string {
	mode := r.Mode
	if r.DryRun {
		mode += " (dry-run)"
	}
	return fmt.Sprintf("%s %s %d updated [%s]", r.FormatTime(), mode, r.UpdatedCount(), r.Overall)
}
