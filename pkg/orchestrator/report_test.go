package orchestrator

import (
	"testing"

	"sysup/pkg/manager"
)

func results(statuses ...manager.Status) []manager.UpdateResult {
	out := make([]manager.UpdateResult, len(statuses))
	for i, s := range statuses {
		out[i] = manager.UpdateResult{Manager: "m", Status: s}
	}
	return out
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []manager.Status
		dryRun   bool
		expected manager.Status
	}{
		{
			name:     "no managers is vacuous success",
			statuses: nil,
			expected: manager.StatusSuccess,
		},
		{
			name:     "all success",
			statuses: []manager.Status{manager.StatusSuccess, manager.StatusSuccess},
			expected: manager.StatusSuccess,
		},
		{
			name:     "failed dominates",
			statuses: []manager.Status{manager.StatusSuccess, manager.StatusFailed, manager.StatusPartial},
			expected: manager.StatusFailed,
		},
		{
			name:     "partial dominates success",
			statuses: []manager.Status{manager.StatusSuccess, manager.StatusPartial},
			expected: manager.StatusPartial,
		},
		{
			name:     "unavailable does not dominate",
			statuses: []manager.Status{manager.StatusUnavailable, manager.StatusSuccess},
			expected: manager.StatusSuccess,
		},
		{
			name:     "everything skipped surfaces as skipped",
			statuses: []manager.Status{manager.StatusSkipped, manager.StatusUnavailable},
			expected: manager.StatusSkipped,
		},
		{
			name:     "clean dry run is simulated",
			statuses: []manager.Status{manager.StatusSimulated, manager.StatusSimulated},
			dryRun:   true,
			expected: manager.StatusSimulated,
		},
		{
			name:     "degraded dominates success",
			statuses: []manager.Status{manager.StatusDegraded, manager.StatusSuccess},
			expected: manager.StatusDegraded,
		},
		{
			name:     "partial dominates degraded",
			statuses: []manager.Status{manager.StatusDegraded, manager.StatusPartial},
			expected: manager.StatusPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(results(tt.statuses...), tt.dryRun); got != tt.expected {
				t.Errorf("Aggregate() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		overall  manager.Status
		expected int
	}{
		{manager.StatusSuccess, 0},
		{manager.StatusSimulated, 0},
		{manager.StatusDegraded, 0},
		{manager.StatusFailed, 1},
		{manager.StatusPartial, 2},
		{manager.StatusSkipped, 3},
		{StatusCancelled, 130},
	}

	for _, tt := range tests {
		t.Run(string(tt.overall), func(t *testing.T) {
			if got := ExitCode(tt.overall); got != tt.expected {
				t.Errorf("ExitCode(%s) = %d, want %d", tt.overall, got, tt.expected)
			}
		})
	}
}

func TestRunReportResult(t *testing.T) {
	report := &RunReport{Results: results(manager.StatusSuccess)}

	if _, ok := report.Result("m"); !ok {
		t.Error("expected to find result for m")
	}
	if _, ok := report.Result("ghost"); ok {
		t.Error("unknown manager should not resolve")
	}
}

func TestUpdatedCount(t *testing.T) {
	report := &RunReport{Results: []manager.UpdateResult{
		{Manager: "a", Updated: []manager.PackageInfo{{Name: "x"}, {Name: "y"}}},
		{Manager: "b", Updated: []manager.PackageInfo{{Name: "z"}}},
		{Manager: "c"},
	}}

	if got := report.UpdatedCount(); got != 3 {
		t.Errorf("UpdatedCount() = %d, want 3", got)
	}
}
