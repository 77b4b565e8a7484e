// ABOUTME: Yes/no confirmation prompt as a bubbletea model
// ABOUTME: Used before destructive actions such as deleting a book

package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/minilibrary/library/internal/tui/theme"
)

// DeleteBookQuestion is asked before a book is deleted
const DeleteBookQuestion = "Are you sure you want to delete this book?"

// ResultMsg reports the answer; Tag identifies what was being confirmed
type ResultMsg struct {
	Tag       string
	Confirmed bool
}

// Prompt asks a single yes/no question
type Prompt struct {
	tag       string
	form      *huh.Form
	confirmed bool
	answered  bool
}

// New creates a prompt for question; detail is shown beneath it
func New(tag, question, detail string) *Prompt {
	p := &Prompt{tag: tag}
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Description(detail).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&p.confirmed),
		),
	).WithTheme(theme.Form()).WithShowHelp(false)
	return p
}

// Init implements tea.Model
func (p *Prompt) Init() tea.Cmd {
	return p.form.Init()
}

// Update implements tea.Model
func (p *Prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return p, p.answer(false)
	}

	model, cmd := p.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		p.form = form
	}

	if p.form.State == huh.StateCompleted {
		return p, p.answer(p.confirmed)
	}
	return p, cmd
}

func (p *Prompt) answer(yes bool) tea.Cmd {
	if p.answered {
		return nil
	}
	p.answered = true
	msg := ResultMsg{Tag: p.tag, Confirmed: yes}
	return func() tea.Msg { return msg }
}

// View implements tea.Model
func (p *Prompt) View() string {
	return p.form.View()
}
