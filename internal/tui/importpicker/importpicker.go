// ABOUTME: Picker for the JSON file an admin imports books from
// ABOUTME: Offers recent import files and a path input, and decodes the chosen file

package importpicker

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/minilibrary/library/internal/catalog"
	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/tui/styles"
	"github.com/minilibrary/library/internal/tui/widgets"
)

type state int

const (
	stateList state = iota
	stateInput
)

// SelectedMsg is sent when a readable import file was chosen
type SelectedMsg struct {
	Path  string
	Books []client.BookInput
}

// CancelledMsg is sent when the user backs out
type CancelledMsg struct{}

// Picker selects and decodes an import file
type Picker struct {
	recent    []string
	cursor    int
	state     state
	textInput textinput.Model
	err       string
	width     int
}

// New creates a Picker listing the given recent paths
func New(recent []string) *Picker {
	ti := textinput.New()
	ti.Placeholder = "/path/to/books.json"
	ti.CharLimit = 256
	ti.Width = 40

	return &Picker{
		recent:    recent,
		textInput: ti,
	}
}

// SetWidth sets the available width for truncating long paths
func (p *Picker) SetWidth(w int) {
	p.width = w
	p.textInput.Width = max(20, w-4)
}

// Init implements tea.Model
func (p *Picker) Init() tea.Cmd {
	if len(p.recent) == 0 {
		return p.openInput()
	}
	return nil
}

// Update implements tea.Model
func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if p.state == stateInput {
			var cmd tea.Cmd
			p.textInput, cmd = p.textInput.Update(msg)
			return p, cmd
		}
		return p, nil
	}

	p.err = ""
	if p.state == stateInput {
		return p.updateInput(key)
	}
	return p.updateList(key)
}

func (p *Picker) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	last := len(p.recent) // "Enter path..." follows the recent files

	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < last {
			p.cursor++
		}
	case "enter":
		if p.cursor < len(p.recent) {
			return p.load(p.recent[p.cursor])
		}
		return p, p.openInput()
	case "esc":
		return p, cancel
	}
	return p, nil
}

func (p *Picker) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if len(p.recent) == 0 {
			return p, cancel
		}
		p.state = stateList
		p.textInput.SetValue("")
		p.textInput.Blur()
		return p, nil
	case "enter":
		path := strings.TrimSpace(p.textInput.Value())
		if path == "" {
			p.err = "Please enter a file path"
			return p, nil
		}
		return p.load(path)
	}

	var cmd tea.Cmd
	p.textInput, cmd = p.textInput.Update(msg)
	return p, cmd
}

func (p *Picker) openInput() tea.Cmd {
	p.state = stateInput
	p.textInput.Focus()
	return textinput.Blink
}

func cancel() tea.Msg {
	return CancelledMsg{}
}

// load reads and decodes path, reporting problems inline
func (p *Picker) load(path string) (tea.Model, tea.Cmd) {
	expanded := expandPath(path)

	f, err := os.Open(expanded)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			p.err = "File not found: " + path
		case errors.Is(err, fs.ErrPermission):
			p.err = "Cannot read file: permission denied"
		default:
			p.err = "Error reading file: " + err.Error()
		}
		return p, nil
	}
	defer f.Close()

	books, err := catalog.DecodeImport(f)
	if err != nil {
		p.err = err.Error()
		return p, nil
	}
	if len(books) == 0 {
		p.err = "No books in " + path
		return p, nil
	}

	return p, func() tea.Msg {
		return SelectedMsg{Path: expanded, Books: books}
	}
}

// expandPath expands a leading ~ to the home directory
func expandPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return home + path[1:]
	}
	return path
}

// Err returns the inline error, if any
func (p *Picker) Err() string {
	return p.err
}

// View implements tea.Model
func (p *Picker) View() string {
	var b strings.Builder

	if p.state == stateInput {
		b.WriteString(styles.Title.Render("Import books from file"))
		b.WriteString("\n\n")
		b.WriteString(p.textInput.View())
	} else {
		b.WriteString(styles.Title.Render("Import books"))
		b.WriteString("\n\n")
		b.WriteString(styles.Help.Render("Recent files:"))
		b.WriteString("\n")
		for i, path := range p.recent {
			b.WriteString(p.row(i, truncate(path, p.width-4)))
		}
		b.WriteString(p.row(len(p.recent), "Enter path..."))
	}

	if p.err != "" {
		b.WriteString("\n\n")
		b.WriteString(widgets.StatusText(p.err, widgets.StatusCritical))
	}
	return b.String()
}

func (p *Picker) row(i int, text string) string {
	if i == p.cursor {
		return styles.SelectedRow.Render("> "+text) + "\n"
	}
	return styles.Row.Render("  "+text) + "\n"
}

// truncate keeps the end of long paths, where the file name is
func truncate(path string, width int) string {
	if width < 10 || len(path) <= width {
		return path
	}
	return "..." + path[len(path)-(width-3):]
}
