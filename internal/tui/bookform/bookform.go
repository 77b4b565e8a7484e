// ABOUTME: Add-book form as a bubbletea model
// ABOUTME: Collects title, author and description with huh and reports completion

package bookform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/tui/theme"
)

// SubmittedMsg is sent when the form is completed
type SubmittedMsg struct {
	Input client.BookInput
}

// CancelledMsg is sent when the form is dismissed with esc
type CancelledMsg struct{}

// Form collects a new book
type Form struct {
	form *huh.Form
	done bool

	title       string
	author      string
	description string
}

// New creates an empty add-book form
func New() *Form {
	f := &Form{}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Book title").
				Value(&f.title).
				Validate(validateTitle),
			huh.NewInput().
				Title("Author").
				Placeholder("Optional").
				Value(&f.author),
			huh.NewText().
				Title("Description").
				Lines(3).
				Value(&f.description),
		).Title("Add New Book").
			Description("Enter to move on, esc to cancel"),
	).WithTheme(theme.Form()).WithShowHelp(false)
	return f
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errTitleRequired
	}
	return nil
}

var errTitleRequired = errors.New("Title is required")

// Input returns the values collected so far
func (f *Form) Input() client.BookInput {
	return client.BookInput{
		Title:       strings.TrimSpace(f.title),
		Author:      strings.TrimSpace(f.author),
		Description: strings.TrimSpace(f.description),
	}
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return f, func() tea.Msg { return CancelledMsg{} }
	}

	model, cmd := f.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		f.form = form
	}

	if f.form.State == huh.StateCompleted && !f.done {
		f.done = true
		input := f.Input()
		return f, func() tea.Msg { return SubmittedMsg{Input: input} }
	}
	return f, cmd
}

// View implements tea.Model
func (f *Form) View() string {
	return f.form.View()
}
