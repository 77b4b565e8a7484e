// ABOUTME: Login and register screens as a bubbletea model
// ABOUTME: Wraps huh forms and emits submit or switch messages for the app to act on

package auth

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/tui/icons"
	"github.com/minilibrary/library/internal/tui/styles"
	"github.com/minilibrary/library/internal/tui/theme"
	"github.com/minilibrary/library/internal/tui/widgets"
)

// Mode selects which form is shown
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// LoginSubmittedMsg is sent when the login form is completed
type LoginSubmittedMsg struct {
	Email    string
	Password string
}

// RegisterSubmittedMsg is sent when the register form is completed
type RegisterSubmittedMsg struct {
	Name     string
	Email    string
	Password string
	Role     client.Role
}

// SwitchMsg asks the app to flip between login and register
type SwitchMsg struct{}

// Form is the login or register screen
type Form struct {
	mode  Mode
	form  *huh.Form
	width int
	err   string
	busy  bool

	name     string
	email    string
	password string
	role     client.Role
}

// NewLogin creates the login screen
func NewLogin() *Form {
	f := &Form{mode: ModeLogin}
	f.form = f.build()
	return f
}

// NewRegister creates the register screen
func NewRegister() *Form {
	f := &Form{mode: ModeRegister}
	f.form = f.build()
	return f
}

// Mode returns which form this is
func (f *Form) Mode() Mode {
	return f.mode
}

func (f *Form) build() *huh.Form {
	email := huh.NewInput().
		Title("Email").
		Placeholder("you@example.com").
		Value(&f.email)
	password := huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&f.password)

	if f.mode == ModeLogin {
		return huh.NewForm(
			huh.NewGroup(email, password).
				Title("Login").
				Description("Sign in to browse the catalog"),
		).WithTheme(theme.Form()).WithShowHelp(false)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.name),
			email,
			password.Description("At least 6 characters"),
			huh.NewSelect[client.Role]().
				Title("Role").
				Options(
					huh.NewOption("User", client.RoleUser),
					huh.NewOption("Admin", client.RoleAdmin),
				).
				Value(&f.role),
		).Title("Register").
			Description("Create an account"),
	).WithTheme(theme.Form()).WithShowHelp(false)
}

// SetError shows msg above the form and reopens it with the values kept.
// An empty msg clears the error.
func (f *Form) SetError(msg string) tea.Cmd {
	f.err = msg
	f.busy = false
	f.form = f.build()
	return f.form.Init()
}

// SetBusy marks a request as in flight; input is ignored meanwhile
func (f *Form) SetBusy(busy bool) {
	f.busy = busy
}

// SetWidth sets the rendering width
func (f *Form) SetWidth(width int) {
	f.width = width
	f.form = f.form.WithWidth(width)
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if f.busy {
			return f, nil
		}
		switch {
		case f.mode == ModeLogin && key.String() == "ctrl+r":
			return f, switchCmd
		case f.mode == ModeRegister && key.String() == "esc":
			return f, switchCmd
		}
	}

	model, cmd := f.form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		f.form = form
	}

	if f.form.State == huh.StateCompleted && !f.busy {
		f.busy = true
		return f, f.submit()
	}
	return f, cmd
}

func switchCmd() tea.Msg {
	return SwitchMsg{}
}

func (f *Form) submit() tea.Cmd {
	if f.mode == ModeLogin {
		msg := LoginSubmittedMsg{Email: f.email, Password: f.password}
		return func() tea.Msg { return msg }
	}
	msg := RegisterSubmittedMsg{Name: f.name, Email: f.email, Password: f.password, Role: f.role}
	return func() tea.Msg { return msg }
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder

	if f.err != "" {
		sb.WriteString(widgets.StatusText(f.err, widgets.StatusCritical))
		sb.WriteString("\n\n")
	}

	if f.busy {
		label := "Logging in..."
		if f.mode == ModeRegister {
			label = "Creating account..."
		}
		sb.WriteString(styles.Dim.Render(icons.Key.String() + " " + label))
		return sb.String()
	}

	sb.WriteString(f.form.View())
	sb.WriteString("\n")

	if f.mode == ModeLogin {
		sb.WriteString(styles.Help.Render("Don't have an account? Press ctrl+r to register"))
	} else {
		sb.WriteString(styles.Help.Render("Already have an account? Press esc to log in"))
	}
	return sb.String()
}
