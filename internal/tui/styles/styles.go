// ABOUTME: Shared lipgloss styles for consistent TUI appearance
// ABOUTME: Defines the library's warm brown palette, borders and text styles

package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#C2A172") // Tan
	Secondary = lipgloss.Color("#8B5E3B") // Walnut
	Success   = lipgloss.Color("#6B8E23") // Olive
	Warning   = lipgloss.Color("#D2B48C") // Parchment
	Danger    = lipgloss.Color("#B3412A") // Brick
	Muted     = lipgloss.Color("#8B7B6B") // Dusty brown
	Text      = lipgloss.Color("#FFFAF0") // Floral white

	// Colors - Extended palette
	Accent  = lipgloss.Color("#F5DEB3") // Wheat, for highlights
	Surface = lipgloss.Color("#4B2E05") // Dark oak
	Info    = lipgloss.Color("#A07A47") // Light walnut

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	// Status indicators
	StatusOK = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Panels
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ActivePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Key style for keyboard shortcuts
	KeyStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// Value style for emphasized data
	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)

	// Book list rows
	SelectedRow = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	Row = lipgloss.NewStyle().
		Foreground(Text)

	Dim = lipgloss.NewStyle().
		Foreground(Muted)
)
