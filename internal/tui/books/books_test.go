// ABOUTME: Tests for the book list component
// ABOUTME: Verifies headings, empty state, author fallback and cursor movement

package books

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/tui/icons"
)

func sampleBooks() []client.Book {
	return []client.Book{
		{ID: "b1", Title: "Dune", Author: "Frank Herbert", Description: "Spice"},
		{ID: "b2", Title: "Solaris"},
		{ID: "b3", Title: "Ubik", Author: "Philip K. Dick"},
	}
}

func TestHeadings(t *testing.T) {
	admin := New(true, "Ada", 80, 40)
	admin.SetBooks(sampleBooks())
	view := admin.View()
	if !strings.Contains(view, "Admin Dashboard - Welcome Ada!") {
		t.Error("expected admin heading")
	}
	if !strings.Contains(view, "All Books (3)") {
		t.Error("expected admin count line")
	}

	user := New(false, "Bob", 80, 40)
	user.SetBooks(sampleBooks())
	view = user.View()
	if !strings.Contains(view, "Library - Welcome Bob!") {
		t.Error("expected user heading")
	}
	if !strings.Contains(view, "Available Books (3)") {
		t.Error("expected user count line")
	}
}

func TestLoadingAndEmpty(t *testing.T) {
	l := New(false, "Bob", 80, 40)
	if !strings.Contains(l.View(), "Loading books...") {
		t.Error("expected loading state before first fetch")
	}

	l.SetBooks([]client.Book{})
	if !strings.Contains(l.View(), "No books found.") {
		t.Error("expected empty state")
	}
	if _, ok := l.Selected(); ok {
		t.Error("expected no selection in empty list")
	}
}

func TestAuthorFallback(t *testing.T) {
	l := New(false, "Bob", 80, 40)
	l.SetBooks(sampleBooks())

	view := l.View()
	if !strings.Contains(view, "by Unknown") {
		t.Error("expected missing author to render as Unknown")
	}
	if !strings.Contains(view, "by Frank Herbert") {
		t.Error("expected author to be shown")
	}
	if !strings.Contains(view, icons.Author.String()+" by Frank Herbert") {
		t.Error("expected author icon before the author line")
	}
}

func TestCursorMovement(t *testing.T) {
	l := New(true, "Ada", 80, 40)
	l.SetBooks(sampleBooks())

	l.Update(tea.KeyMsg{Type: tea.KeyDown})
	l.Update(tea.KeyMsg{Type: tea.KeyDown})
	l.Update(tea.KeyMsg{Type: tea.KeyDown})

	b, ok := l.Selected()
	if !ok || b.ID != "b3" {
		t.Errorf("expected cursor clamped at last book, got %v", b.ID)
	}

	l.Update(tea.KeyMsg{Type: tea.KeyUp})
	b, _ = l.Selected()
	if b.ID != "b2" {
		t.Errorf("expected b2 after moving up, got %v", b.ID)
	}
}

func TestCursorClampedAfterShrink(t *testing.T) {
	l := New(true, "Ada", 80, 40)
	l.SetBooks(sampleBooks())
	l.Update(tea.KeyMsg{Type: tea.KeyEnd})

	l.SetBooks(sampleBooks()[:1])

	b, ok := l.Selected()
	if !ok || b.ID != "b1" {
		t.Errorf("expected cursor to move to remaining book, got %v", b.ID)
	}
}

func TestScrollWindow(t *testing.T) {
	// room for two books
	l := New(false, "Bob", 80, 12)
	l.SetBooks(sampleBooks())

	if strings.Contains(l.View(), "Ubik") {
		t.Error("expected third book to be scrolled out of view")
	}

	l.Update(tea.KeyMsg{Type: tea.KeyEnd})
	view := l.View()
	if !strings.Contains(view, "Ubik") {
		t.Error("expected third book visible after moving to the end")
	}
	if !strings.Contains(view, "2-3 of 3") {
		t.Error("expected position indicator")
	}
}
