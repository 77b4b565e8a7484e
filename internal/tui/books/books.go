// ABOUTME: Book list component shared by the admin and user dashboards
// ABOUTME: Renders the heading, the scrollable list and a selection cursor

package books

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/tui/icons"
	"github.com/minilibrary/library/internal/tui/styles"
)

// linesPerBook is the rendered height of one entry, including the gap
const linesPerBook = 4

// List displays the catalog
type List struct {
	admin    bool
	userName string
	books    []client.Book
	loaded   bool
	cursor   int
	offset   int
	width    int
	height   int
}

// New creates an empty list for the given audience
func New(admin bool, userName string, width, height int) *List {
	return &List{
		admin:    admin,
		userName: userName,
		width:    width,
		height:   height,
	}
}

// SetBooks replaces the listing and keeps the cursor in range
func (l *List) SetBooks(books []client.Book) {
	l.books = books
	l.loaded = true
	if l.cursor >= len(books) {
		l.cursor = max(0, len(books)-1)
	}
	l.scroll()
}

// Books returns the current listing
func (l *List) Books() []client.Book {
	return l.books
}

// SetSize updates the list dimensions
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.scroll()
}

// Selected returns the highlighted book
func (l *List) Selected() (client.Book, bool) {
	if len(l.books) == 0 {
		return client.Book{}, false
	}
	return l.books[l.cursor], true
}

// Update moves the cursor
func (l *List) Update(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.books)-1 {
			l.cursor++
		}
	case "home", "g":
		l.cursor = 0
	case "end", "G":
		l.cursor = max(0, len(l.books)-1)
	}
	l.scroll()
}

func (l *List) pageSize() int {
	// heading and count take four lines
	return max(1, (l.height-4)/linesPerBook)
}

func (l *List) scroll() {
	page := l.pageSize()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+page {
		l.offset = l.cursor - page + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

// Heading returns the welcome line for the audience
func (l *List) Heading() string {
	if l.admin {
		return fmt.Sprintf("Admin Dashboard - Welcome %s!", l.userName)
	}
	return fmt.Sprintf("Library - Welcome %s!", l.userName)
}

// CountLine returns the "All Books (n)" / "Available Books (n)" line
func (l *List) CountLine() string {
	if l.admin {
		return fmt.Sprintf("All Books (%d)", len(l.books))
	}
	return fmt.Sprintf("Available Books (%d)", len(l.books))
}

// View renders the list
func (l *List) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Shelf.String() + " " + l.Heading()))
	sb.WriteString("\n")

	if !l.loaded {
		sb.WriteString(styles.Dim.Render("Loading books..."))
		return sb.String()
	}

	sb.WriteString(styles.Subtitle.Render(l.CountLine()))
	sb.WriteString("\n")

	if len(l.books) == 0 {
		sb.WriteString(styles.Dim.Render("No books found."))
		return sb.String()
	}

	end := min(len(l.books), l.offset+l.pageSize())
	for i := l.offset; i < end; i++ {
		sb.WriteString(l.renderBook(i))
		if i < end-1 {
			sb.WriteString("\n\n")
		}
	}

	if end < len(l.books) || l.offset > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(styles.Dim.Render(fmt.Sprintf("%d-%d of %d", l.offset+1, end, len(l.books))))
	}
	return sb.String()
}

func (l *List) renderBook(i int) string {
	b := l.books[i]

	marker := "  "
	titleStyle := styles.Row
	if i == l.cursor {
		marker = "> "
		titleStyle = styles.SelectedRow
	}

	title := marker + icons.Book.String() + " " + titleStyle.Render(b.Title)
	author := "    " + styles.Dim.Render(icons.Author.String()+" by "+b.DisplayAuthor())
	desc := "    " + styles.Dim.Render(truncate(b.Description, l.width-4))
	return title + "\n" + author + "\n" + desc
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width <= 3 || len([]rune(s)) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}
