package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"sysup/pkg/manager"
	"sysup/pkg/orchestrator"
)

// Table wraps tabwriter for consistent styling.
type Table struct {
	writer  *tabwriter.Writer
	headers []string
	wrote   bool
}

// NewTable creates a new table writing to stdout.
func NewTable(header []string) *Table {
	return NewTableWriter(os.Stdout, header)
}

// NewTableWriter creates a new table that writes to a specific writer.
func NewTableWriter(w io.Writer, header []string) *Table {
	return &Table{
		writer:  tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers: header,
	}
}

// AddRow adds a row to the table, emitting the header row first.
func (t *Table) AddRow(row []string) {
	if !t.wrote && len(t.headers) > 0 {
		headerRow := make([]string, len(t.headers))
		for i, h := range t.headers {
			headerRow[i] = Bold(strings.ToUpper(h))
		}
		fmt.Fprintln(t.writer, strings.Join(headerRow, "\t"))
	}
	t.wrote = true
	fmt.Fprintln(t.writer, strings.Join(row, "\t"))
}

// Render outputs the table.
func (t *Table) Render() {
	t.writer.Flush()
}

// PrintManagers prints the registered managers with availability and
// enablement.
func PrintManagers(managers []manager.ManagerStatus) {
	table := NewTable([]string{"manager", "name", "available", "enabled"})
	for _, m := range managers {
		avail := Unavailable.Sprint("no")
		if m.Available {
			avail = Available.Sprint("yes")
		}
		enabled := "yes"
		if !m.Enabled {
			enabled = Muted.Sprint("no")
		}
		table.AddRow([]string{ManagerName.Sprint(m.Name), m.DisplayName, avail, enabled})
	}
	table.Render()
}

// PrintPending prints discovered update candidates grouped per manager.
func PrintPending(report *orchestrator.RunReport) {
	total := 0
	for _, result := range report.Results {
		pending := report.Pending[result.Manager]

		switch {
		case result.Status == manager.StatusUnavailable:
			MutedMsg("%s: not installed", result.Manager)
			continue
		case result.Status == manager.StatusFailed:
			ErrorMsg("%s: discovery failed", result.Manager)
			for _, e := range result.Errors {
				MutedMsg("    %s", e.Message)
			}
			continue
		case len(pending) == 0:
			SuccessMsg("%s: up to date", result.Manager)
			continue
		}

		total += len(pending)
		InfoMsg("%s: %d update(s)", result.Manager, len(pending))

		table := NewTable(nil)
		for _, pkg := range pending {
			version := pkg.CurrentVersion
			if pkg.LatestVersion != "" {
				version = fmt.Sprintf("%s %s %s", pkg.CurrentVersion, SymbolArrow, PackageVersion.Sprint(pkg.LatestVersion))
			}
			note := ""
			if pkg.RequiresPrivilege {
				note = Warning.Sprint("sudo")
			}
			table.AddRow([]string{"  " + PackageName.Sprint(pkg.Name), version, note})
		}
		table.Render()
	}

	if total == 0 {
		return
	}
	Println("")
	InfoMsg("%d update(s) pending", total)
}

// PrintReport prints the per-manager outcome of an update run.
func PrintReport(report *orchestrator.RunReport) {
	for _, result := range report.Results {
		line := fmt.Sprintf("%s: %s", Bold(result.Manager), StatusString(result.Status))
		if n := len(result.Updated); n > 0 {
			line += fmt.Sprintf(", %d updated", n)
		}
		if n := len(result.Skipped); n > 0 {
			line += fmt.Sprintf(", %d skipped", n)
		}
		Println("%s", line)

		for _, skip := range result.Skipped {
			MutedMsg("    skipped %s: %s", skip.Package.Name, skip.Reason)
		}
		for _, e := range result.Errors {
			MutedMsg("    error: %s", e.Message)
		}
	}

	Println("")
	summary := fmt.Sprintf("%d package(s) updated", report.UpdatedCount())
	if report.DryRun {
		summary += " (dry-run)"
	}
	switch report.Overall {
	case manager.StatusFailed:
		ErrorMsg("%s, overall %s", summary, report.Overall)
	case manager.StatusPartial, manager.StatusDegraded:
		WarningMsg("%s, overall %s", summary, report.Overall)
	case orchestrator.StatusCancelled:
		WarningMsg("run cancelled, %s", summary)
	default:
		SuccessMsg("%s", summary)
	}
}
