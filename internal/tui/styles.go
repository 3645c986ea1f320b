// Package tui provides the interactive status dashboard for sysup.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette - matches the CLI colors
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorWarning = lipgloss.Color("#F59E0B") // Yellow
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorText    = lipgloss.Color("#F3F4F6") // Light gray
)

// Manager accent colors
var ManagerColors = map[string]lipgloss.Color{
	"brew":    lipgloss.Color("#FBB040"), // Homebrew yellow
	"mas":     lipgloss.Color("#0A84FF"), // App Store blue
	"npm":     lipgloss.Color("#CB3837"), // npm red
	"pip":     lipgloss.Color("#3776AB"), // Python blue
	"gem":     lipgloss.Color("#CC342D"), // Ruby red
	"vscode":  lipgloss.Color("#007ACC"), // VS Code blue
	"texlive": lipgloss.Color("#008080"), // TeX teal
}

// Styles contains the lipgloss styles used in the dashboard.
type Styles struct {
	Header   lipgloss.Style
	Footer   lipgloss.Style
	Manager  lipgloss.Style
	Selected lipgloss.Style
	Dim      lipgloss.Style
	Count    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Spinner  lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1),
		Manager: lipgloss.NewStyle().
			Foreground(ColorText),
		Selected: lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Count: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Error: lipgloss.NewStyle().
			Foreground(ColorError),
		Spinner: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		HelpKey: lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true),
		HelpDesc: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// ManagerStyle returns the accent style for a manager name.
func (s *Styles) ManagerStyle(name string) lipgloss.Style {
	if c, ok := ManagerColors[name]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return s.Manager
}
