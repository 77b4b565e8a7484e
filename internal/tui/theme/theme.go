// ABOUTME: huh form theme shared by the TUI screens and CLI prompts
// ABOUTME: Maps the library palette onto huh's focused and blurred field styles

package theme

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/minilibrary/library/internal/tui/styles"
)

// Form returns the huh theme used for every form
func Form() *huh.Theme {
	t := huh.ThemeBase()

	light := lipgloss.Color("#F8ECD1")
	gray := styles.Muted
	red := styles.Danger

	// Group styles (section headers)
	t.Group.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	// Focused field styles
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	// Select field styles
	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(styles.Primary).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(light)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true)
	t.Focused.NextIndicator = lipgloss.NewStyle().
		Foreground(styles.Primary).
		MarginLeft(1).
		SetString("→")
	t.Focused.PrevIndicator = lipgloss.NewStyle().
		Foreground(styles.Primary).
		MarginRight(1).
		SetString("←")

	// Text input styles
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(styles.Primary)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(light)

	// Button styles
	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Secondary).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(styles.Surface).
		Padding(0, 2).
		MarginRight(1)

	// Blurred fields reuse the focused styles with muted colors
	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}
