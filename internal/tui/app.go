// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Routes between login, verification and dashboards as the session changes

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/minilibrary/library/internal/catalog"
	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/session"
	"github.com/minilibrary/library/internal/tui/auth"
	"github.com/minilibrary/library/internal/tui/bookform"
	"github.com/minilibrary/library/internal/tui/books"
	"github.com/minilibrary/library/internal/tui/confirm"
	"github.com/minilibrary/library/internal/tui/icons"
	"github.com/minilibrary/library/internal/tui/importpicker"
	"github.com/minilibrary/library/internal/tui/recentimports"
	"github.com/minilibrary/library/internal/tui/router"
	"github.com/minilibrary/library/internal/tui/styles"
	"github.com/minilibrary/library/internal/tui/widgets"
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
	authPanelWidth   = 60
)

// sessionChangedMsg is sent by the session subscription
type sessionChangedMsg struct {
	session session.Session
}

// sessionVerifiedMsg is sent when verification of a restored token finishes
type sessionVerifiedMsg struct {
	err error
}

// authDoneMsg is sent when a login or register attempt finishes
type authDoneMsg struct {
	err error
}

// loggedOutMsg is sent when logout finishes
type loggedOutMsg struct {
	err error
}

// booksLoadedMsg is sent when the listing is fetched.
// gen is the listing generation the fetch started in.
type booksLoadedMsg struct {
	gen   int
	books []client.Book
	err   error
}

// bookMutatedMsg is sent when an add, delete or import finishes.
// books may be set alongside err when part of an import succeeded.
type bookMutatedMsg struct {
	action string
	done   string
	books  []client.Book
	err    error
}

// mutation changes the catalog and returns the refreshed listing with a status line
type mutation func(ctx context.Context) (books []client.Book, done string, err error)

// App is the root model for the TUI
type App struct {
	ctx      context.Context
	sessions *session.Store
	catalog  *catalog.Catalog
	log      *slog.Logger
	recent   *recentimports.Recent

	screen    router.Screen
	showLogin bool
	width     int
	height    int
	busy      bool

	// notice is shown above the current screen, status below it
	notice      string
	noticeLevel widgets.StatusLevel
	status      string
	statusLevel widgets.StatusLevel
	verifyErr   string
	lastUpdate  time.Time

	// Child models
	spinner spinner.Model
	auth    *auth.Form
	list    *books.List
	addForm *bookform.Form
	prompt  *confirm.Prompt
	picker  *importpicker.Picker

	// listGen advances on every mutation; fetches from an older generation are dropped
	listGen int
}

// Option configures the App
type Option func(*App)

// WithRecentImports remembers import files across runs
func WithRecentImports(r *recentimports.Recent) Option {
	return func(a *App) {
		a.recent = r
	}
}

// New creates a new TUI application. The session should already have been
// restored; verification of a pending token starts in Init.
func New(ctx context.Context, sessions *session.Store, cat *catalog.Catalog, log *slog.Logger, opts ...Option) *App {
	if log == nil {
		log = slog.Default()
	}
	a := &App{
		ctx:       ctx,
		sessions:  sessions,
		catalog:   cat,
		log:       log,
		showLogin: true,
		screen:    -1,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
		),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.route()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick}
	if a.auth != nil {
		cmds = append(cmds, a.auth.Init())
	}
	if a.screen == router.ScreenVerifying {
		cmds = append(cmds, a.verify())
	}
	if a.screen.IsDashboard() {
		cmds = append(cmds, a.loadBooks())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.list != nil {
			a.list.SetSize(a.dashboardWidth()-panelPadding, a.contentHeight())
		}
		if a.auth != nil {
			a.auth.SetWidth(a.authWidth())
		}
		return a, nil

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Overlays take input first
		if a.prompt != nil {
			return a.updatePrompt(msg)
		}
		if a.addForm != nil {
			return a.updateAddForm(msg)
		}
		if a.picker != nil {
			return a.updatePicker(msg)
		}

		// Route to current screen
		switch a.screen {
		case router.ScreenLogin, router.ScreenRegister:
			return a.updateAuth(msg)
		case router.ScreenVerifying:
			return a.updateVerifying(msg)
		case router.ScreenAdminDashboard, router.ScreenUserDashboard:
			return a.updateDashboard(msg)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case sessionChangedMsg:
		return a, a.route()

	case sessionVerifiedMsg:
		return a.handleVerified(msg)

	case auth.SwitchMsg:
		a.showLogin = !a.showLogin
		a.notice = ""
		return a, a.route()

	case auth.LoginSubmittedMsg:
		return a.startAuth(func(ctx context.Context) error {
			return a.sessions.Login(ctx, msg.Email, msg.Password)
		})

	case auth.RegisterSubmittedMsg:
		return a.startAuth(func(ctx context.Context) error {
			return a.sessions.Register(ctx, session.RegisterInput{
				Name:     msg.Name,
				Email:    msg.Email,
				Password: msg.Password,
				Role:     msg.Role,
			})
		})

	case authDoneMsg:
		return a.handleAuthDone(msg)

	case loggedOutMsg:
		a.busy = false
		a.showLogin = true
		if msg.err != nil {
			a.setNotice("Logged out, but the saved session could not be removed: "+msg.err.Error(), widgets.StatusWarning)
		}
		return a, a.route()

	case booksLoadedMsg:
		return a.handleBooksLoaded(msg)

	case bookform.SubmittedMsg:
		a.addForm = nil
		return a.startMutation("add book", func(ctx context.Context) ([]client.Book, string, error) {
			list, err := a.catalog.Add(ctx, msg.Input)
			return list, "Book added", err
		})

	case bookform.CancelledMsg:
		a.addForm = nil
		return a, nil

	case confirm.ResultMsg:
		a.prompt = nil
		if !msg.Confirmed {
			return a, nil
		}
		id := client.ID(msg.Tag)
		return a.startMutation("delete book", func(ctx context.Context) ([]client.Book, string, error) {
			list, err := a.catalog.Delete(ctx, id)
			return list, "Book deleted", err
		})

	case importpicker.SelectedMsg:
		a.picker = nil
		a.rememberImport(msg.Path)
		return a.startMutation("import books", a.importBooks(msg.Books))

	case importpicker.CancelledMsg:
		a.picker = nil
		return a, nil

	case bookMutatedMsg:
		return a.handleMutated(msg)

	default:
		// huh forms need their internal messages
		return a.forwardToForms(msg)
	}
}

// route selects the screen for the current session and prepares it
func (a *App) route() tea.Cmd {
	sess := a.sessions.Current()
	next := router.Select(sess, a.showLogin)
	if next == a.screen {
		return nil
	}

	a.log.Debug("Switching screen", "from", a.screen.String(), "to", next.String())
	prev := a.screen
	a.screen = next
	a.auth = nil
	a.list = nil
	a.addForm = nil
	a.prompt = nil
	a.picker = nil
	a.status = ""

	switch next {
	case router.ScreenLogin:
		a.auth = auth.NewLogin()
	case router.ScreenRegister:
		a.auth = auth.NewRegister()
	case router.ScreenVerifying:
		a.verifyErr = ""
		return nil
	case router.ScreenAdminDashboard, router.ScreenUserDashboard:
		a.list = books.New(next == router.ScreenAdminDashboard, sess.User.Name, a.dashboardWidth()-panelPadding, a.contentHeight())
		a.notice = ""
		if prev == -1 {
			// first screen: Init loads the books
			return nil
		}
		return a.loadBooks()
	}

	if a.width > 0 {
		a.auth.SetWidth(a.authWidth())
	}
	if prev == -1 {
		return nil
	}
	return a.auth.Init()
}

func (a *App) setNotice(msg string, level widgets.StatusLevel) {
	a.notice = msg
	a.noticeLevel = level
}

func (a *App) setStatus(msg string, level widgets.StatusLevel) {
	a.status = msg
	a.statusLevel = level
}

func (a *App) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.auth == nil {
		return a, nil
	}
	model, cmd := a.auth.Update(msg)
	a.auth = model.(*auth.Form)
	return a, cmd
}

func (a *App) updateVerifying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		if a.verifyErr != "" {
			a.verifyErr = ""
			return a, a.verify()
		}
	case "l":
		return a, a.logout()
	}
	return a, nil
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		a.setStatus("Refreshing...", widgets.StatusNeutral)
		return a, a.loadBooks()
	case "l":
		if a.busy {
			return a, nil
		}
		return a, a.logout()
	case "a":
		if a.screen != router.ScreenAdminDashboard {
			return a, nil
		}
		if a.busy {
			a.setStatus("Please wait for the current change to finish", widgets.StatusWarning)
			return a, nil
		}
		a.addForm = bookform.New()
		return a, a.addForm.Init()
	case "d":
		if a.screen != router.ScreenAdminDashboard || a.list == nil {
			return a, nil
		}
		if a.busy {
			a.setStatus("Please wait for the current change to finish", widgets.StatusWarning)
			return a, nil
		}
		book, ok := a.list.Selected()
		if !ok {
			return a, nil
		}
		a.prompt = confirm.New(string(book.ID), confirm.DeleteBookQuestion, book.Title)
		return a, a.prompt.Init()
	case "i":
		if a.screen != router.ScreenAdminDashboard {
			return a, nil
		}
		if a.busy {
			a.setStatus("Please wait for the current change to finish", widgets.StatusWarning)
			return a, nil
		}
		var recent []string
		if a.recent != nil {
			recent = a.recent.List()
		}
		a.picker = importpicker.New(recent)
		a.picker.SetWidth(a.actionsWidth() - panelPadding)
		return a, a.picker.Init()
	default:
		if a.list != nil {
			a.list.Update(msg)
		}
	}
	return a, nil
}

func (a *App) updateAddForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.addForm.Update(msg)
	a.addForm = model.(*bookform.Form)
	return a, cmd
}

func (a *App) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.prompt.Update(msg)
	a.prompt = model.(*confirm.Prompt)
	return a, cmd
}

func (a *App) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.picker.Update(msg)
	a.picker = model.(*importpicker.Picker)
	return a, cmd
}

func (a *App) forwardToForms(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch {
	case a.picker != nil:
		return a.updatePicker(msg)
	case a.prompt != nil:
		return a.updatePrompt(msg)
	case a.addForm != nil:
		return a.updateAddForm(msg)
	case a.auth != nil:
		model, cmd := a.auth.Update(msg)
		a.auth = model.(*auth.Form)
		return a, cmd
	}
	return a, nil
}

func (a *App) startAuth(fn func(ctx context.Context) error) (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}
	a.busy = true
	a.notice = ""
	if a.auth != nil {
		a.auth.SetBusy(true)
	}
	ctx := a.ctx
	return a, func() tea.Msg {
		return authDoneMsg{err: fn(ctx)}
	}
}

func (a *App) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	a.busy = false

	if msg.err != nil && a.sessions.State() == session.StateAuthenticated {
		// logged in, but the token could not be saved
		a.log.Warn("Session not persisted", "error", msg.err)
		cmd := a.route()
		a.setStatus("Logged in, but the session will not be remembered: "+msg.err.Error(), widgets.StatusWarning)
		return a, cmd
	}

	if errors.Is(msg.err, session.ErrVerifyUnavailable) || errors.Is(msg.err, session.ErrSessionRejected) {
		// token was issued without a user and the follow-up verification failed
		return a.handleVerified(sessionVerifiedMsg{err: msg.err})
	}

	if msg.err != nil {
		text := session.UserMessage(msg.err)
		if text == "" {
			text = msg.err.Error()
		}
		if a.auth != nil && a.screen != router.ScreenVerifying {
			return a, a.auth.SetError(text)
		}
		a.setNotice(text, widgets.StatusCritical)
		return a, a.route()
	}

	return a, a.route()
}

func (a *App) handleVerified(msg sessionVerifiedMsg) (tea.Model, tea.Cmd) {
	pending := a.sessions.State() == session.StatePendingVerification
	if msg.err != nil && !pending {
		a.showLogin = true
	}
	cmd := a.route()

	switch {
	case msg.err == nil:
	case errors.Is(msg.err, session.ErrVerifyUnavailable) && pending:
		a.verifyErr = "Could not reach the server to verify your session."
		a.log.Warn("Verification unavailable", "error", msg.err)
	case errors.Is(msg.err, session.ErrSessionRejected), errors.Is(msg.err, session.ErrVerifyUnavailable):
		a.setNotice("Your session has expired. Please log in again.", widgets.StatusWarning)
	default:
		a.setNotice(msg.err.Error(), widgets.StatusCritical)
	}
	return a, cmd
}

func (a *App) handleBooksLoaded(msg booksLoadedMsg) (tea.Model, tea.Cmd) {
	if a.list == nil {
		return a, nil
	}
	if msg.gen != a.listGen {
		a.log.Debug("Dropping listing fetched before a change", "gen", msg.gen, "current", a.listGen)
		return a, nil
	}
	if msg.err != nil {
		a.setStatus("Failed to load books: "+msg.err.Error(), widgets.StatusCritical)
		return a, nil
	}
	a.list.SetBooks(msg.books)
	a.lastUpdate = time.Now()
	if a.statusLevel == widgets.StatusNeutral || a.statusLevel == widgets.StatusCritical {
		a.status = ""
	}
	return a, nil
}

func (a *App) startMutation(action string, fn mutation) (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}
	a.busy = true
	a.listGen++
	a.setStatus("Saving...", widgets.StatusNeutral)
	ctx := a.ctx
	return a, func() tea.Msg {
		list, done, err := fn(ctx)
		return bookMutatedMsg{action: action, done: done, books: list, err: err}
	}
}

func (a *App) handleMutated(msg bookMutatedMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	a.listGen++
	if msg.books != nil && a.list != nil {
		a.list.SetBooks(msg.books)
		a.lastUpdate = time.Now()
	}
	if msg.err != nil {
		var valErr *catalog.ValidationError
		if errors.As(msg.err, &valErr) {
			a.setStatus(valErr.Message, widgets.StatusWarning)
			return a, nil
		}
		a.setStatus(fmt.Sprintf("Could not %s: %v", msg.action, msg.err), widgets.StatusCritical)
		return a, nil
	}
	a.setStatus(msg.done, widgets.StatusOK)
	return a, nil
}

// importBooks creates the mutation for a bulk import. After a partial
// failure the listing is refetched so the created books show up.
func (a *App) importBooks(inputs []client.BookInput) mutation {
	return func(ctx context.Context) ([]client.Book, string, error) {
		created, list, err := a.catalog.Import(ctx, inputs)
		if err != nil {
			if created > 0 {
				list, _ = a.catalog.Refresh(ctx)
				err = fmt.Errorf("%w (%d of %d imported)", err, created, len(inputs))
			}
			return list, "", err
		}
		return list, fmt.Sprintf("Imported %d books", created), nil
	}
}

// rememberImport records path in the recent imports list
func (a *App) rememberImport(path string) {
	if a.recent == nil {
		return
	}
	if err := a.recent.Add(path); err != nil {
		a.log.Warn("Could not remember import file", "path", path, "error", err)
	}
}

// verify creates a command that checks the pending token
func (a *App) verify() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return sessionVerifiedMsg{err: a.sessions.Verify(ctx)}
	}
}

// loadBooks creates a command to fetch the listing
func (a *App) loadBooks() tea.Cmd {
	ctx := a.ctx
	gen := a.listGen
	return func() tea.Msg {
		list, err := a.catalog.List(ctx)
		return booksLoadedMsg{gen: gen, books: list, err: err}
	}
}

// logout creates a command that ends the session
func (a *App) logout() tea.Cmd {
	a.busy = true
	return func() tea.Msg {
		return loggedOutMsg{err: a.sessions.Logout()}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case router.ScreenLogin, router.ScreenRegister:
		content = a.viewAuth()
	case router.ScreenVerifying:
		content = a.viewVerifying()
	case router.ScreenAdminDashboard, router.ScreenUserDashboard:
		content = a.viewDashboard()
	}

	if a.notice != "" {
		content = widgets.StatusText(a.notice, a.noticeLevel) + "\n" + content
	}
	if a.status != "" {
		content += "\n" + widgets.StatusText(a.status, a.statusLevel)
	}

	return a.wrapWithFrame(content)
}

// viewAuth renders the login or register form
func (a *App) viewAuth() string {
	if a.auth == nil {
		return ""
	}
	return styles.ActivePanel.Width(a.authWidth()).Render(a.auth.View())
}

// viewVerifying renders the verification spinner or its failure
func (a *App) viewVerifying() string {
	if a.verifyErr == "" {
		return styles.Panel.Render(a.spinner.View() + " Verifying session...")
	}

	var sb strings.Builder
	sb.WriteString(widgets.StatusText(a.verifyErr, widgets.StatusWarning))
	sb.WriteString("\n\n")
	sb.WriteString(styles.Help.Render("Press r to retry or l to log out"))
	return styles.Panel.Render(sb.String())
}

// viewDashboard renders the book list with the actions pane
func (a *App) viewDashboard() string {
	leftPane := ""
	if a.list != nil {
		leftPane = styles.ActivePanel.Width(a.dashboardWidth()).Render(a.list.View())
	} else {
		leftPane = styles.Panel.Width(a.dashboardWidth()).Render("Loading...")
	}

	var rightContent string
	switch {
	case a.prompt != nil:
		rightContent = a.prompt.View()
	case a.addForm != nil:
		rightContent = a.addForm.View()
	case a.picker != nil:
		rightContent = a.picker.View()
	default:
		rightContent = a.actionsPane()
	}
	if a.busy {
		rightContent += "\n" + a.spinner.View() + " Working..."
	}
	rightPane := styles.Panel.Width(a.actionsWidth()).Render(rightContent)

	if a.width < minTerminalWidth {
		return lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

// actionsPane lists what the user can do on the dashboard
func (a *App) actionsPane() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Settings.String() + " Actions"))
	sb.WriteString("\n\n")
	if a.screen == router.ScreenAdminDashboard {
		sb.WriteString(icons.Add.String() + " Add a book\n")
		sb.WriteString(icons.Delete.String() + " Delete selected book\n")
		sb.WriteString(icons.Shelf.String() + " Import books from file\n")
	}
	sb.WriteString(icons.Refresh.String() + " Refresh list\n")
	sb.WriteString(icons.Logout.String() + " Log out\n")
	sb.WriteString(icons.Quit.String() + " Quit application\n")
	return sb.String()
}

// frameWidth is the rendered width of header and footer
func (a *App) frameWidth() int {
	// one column short of the terminal to avoid wrapping
	return max(minTerminalWidth, a.width-1)
}

// authWidth calculates the width for the login/register panel
func (a *App) authWidth() int {
	return min(authPanelWidth, max(a.width-panelPadding, 40))
}

// dashboardWidth calculates the width for the book list pane
func (a *App) dashboardWidth() int {
	if a.width < minTerminalWidth {
		return max(a.width-panelPadding, 20)
	}
	return (a.width - panelPadding) * 3 / 5
}

// actionsWidth calculates the width for the actions pane
func (a *App) actionsWidth() int {
	if a.width < minTerminalWidth {
		return a.dashboardWidth()
	}
	return a.width - a.dashboardWidth() - 4
}

// contentHeight calculates the height available for the book list
func (a *App) contentHeight() int {
	// Total overhead:
	// - Header: 1 line
	// - Newline after header: 1 line
	// - ActivePanel border+padding: 4 lines
	// - Status line: 1 line
	// - Footer: 1 line
	return max(a.height-8, linesForOneBook)
}

const linesForOneBook = 8

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Accent)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Library"))

	rightText := ""
	if sess := a.sessions.Current(); sess.State() == session.StateAuthenticated {
		rightText = " " + contextStyle.Render(sess.User.Name) + " " + widgets.RoleBadge(sess.User.Role) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := max(0, width-4-leftWidth-rightWidth) // -4 for ╭─ and ─╮

	fill := borderStyle.Render(strings.Repeat("─", fillWidth))

	return borderStyle.Render("╭─") + leftText + fill + rightText + borderStyle.Render("─╮")
}

// shortcuts returns the keyboard hints for the current screen
func (a *App) shortcuts() []string {
	switch {
	case a.prompt != nil:
		return []string{"←→ Choose", "Enter Confirm", "Esc Cancel"}
	case a.addForm != nil:
		return []string{"Tab Next", "Enter Submit", "Esc Cancel"}
	case a.picker != nil:
		return []string{"↑↓ Select", "Enter Open", "Esc Cancel"}
	}

	switch a.screen {
	case router.ScreenLogin:
		return []string{"Enter Submit", "ctrl+r Register", "ctrl+c Quit"}
	case router.ScreenRegister:
		return []string{"Enter Submit", "Esc Login", "ctrl+c Quit"}
	case router.ScreenVerifying:
		return []string{"r Retry", "l Logout", "q Quit"}
	case router.ScreenAdminDashboard:
		return []string{"↑↓ Select", "a Add", "d Delete", "i Import", "r Refresh", "l Logout", "q Quit"}
	case router.ScreenUserDashboard:
		return []string{"↑↓ Select", "r Refresh", "l Logout", "q Quit"}
	}
	return nil
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	shortcuts := a.shortcuts()

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ")
	leftPlainText := " " + strings.Join(shortcuts, "  ")

	// Right side status (last update time)
	rightText := ""
	rightPlainText := ""
	if !a.lastUpdate.IsZero() && a.screen.IsDashboard() {
		elapsed := formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = "Updated " + elapsed + " "
	}

	leftWidth := lipgloss.Width(leftPlainText)
	rightWidth := lipgloss.Width(rightPlainText)
	if leftWidth+rightWidth+4 > width {
		// shortcuts win over the update time
		rightText, rightWidth = "", 0
	}
	fillWidth := max(0, width-4-leftWidth-rightWidth) // -4 for ╰─ and ─╯

	fill := strings.Repeat("─", fillWidth)

	return borderStyle.Render("╰─") + leftText + borderStyle.Render(fill) + rightText + borderStyle.Render("─╯")
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, sessions *session.Store, cat *catalog.Catalog, log *slog.Logger, opts ...Option) error {
	app := New(ctx, sessions, cat, log, opts...)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	unsubscribe := sessions.Subscribe(func(s session.Session) {
		p.Send(sessionChangedMsg{session: s})
	})
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
