// ABOUTME: Tests for the import file picker
// ABOUTME: Validates navigation, path entry, decoding and inline errors

package importpicker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func writeImport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStartsOnInputWithoutRecentFiles(t *testing.T) {
	p := New(nil)
	p.Init()

	if p.state != stateInput {
		t.Errorf("expected path input, got state %d", p.state)
	}
	if !strings.Contains(p.View(), "Import books from file") {
		t.Errorf("unexpected view: %q", p.View())
	}
}

func TestSelectRecentFile(t *testing.T) {
	path := writeImport(t, `[{"title": "Emma"}, {"title": "Ulysses"}]`)
	p := New([]string{path})
	p.Init()

	_, cmd := p.Update(key("enter"))
	if cmd == nil {
		t.Fatalf("expected a selection, got error %q", p.Err())
	}
	msg, ok := cmd().(SelectedMsg)
	if !ok {
		t.Fatalf("expected SelectedMsg, got %T", cmd())
	}
	if msg.Path != path || len(msg.Books) != 2 || msg.Books[0].Title != "Emma" {
		t.Errorf("unexpected selection: %+v", msg)
	}
}

func TestNavigateToPathInput(t *testing.T) {
	p := New([]string{"/a.json", "/b.json"})

	p.Update(key("down"))
	p.Update(key("down"))
	p.Update(key("down"))
	if p.cursor != 2 {
		t.Fatalf("expected cursor clamped at 2, got %d", p.cursor)
	}
	p.Update(key("up"))
	p.Update(key("down"))

	p.Update(key("enter"))
	if p.state != stateInput {
		t.Errorf("expected path input, got state %d", p.state)
	}

	p.Update(key("esc"))
	if p.state != stateList {
		t.Errorf("expected esc to return to the list, got state %d", p.state)
	}
}

func TestTypedPath(t *testing.T) {
	path := writeImport(t, `{"books": [{"title": "Emma"}]}`)
	p := New(nil)
	p.Init()

	p.Update(key(path))
	_, cmd := p.Update(key("enter"))
	if cmd == nil {
		t.Fatalf("expected a selection, got error %q", p.Err())
	}
	if msg, ok := cmd().(SelectedMsg); !ok || len(msg.Books) != 1 {
		t.Errorf("unexpected message %#v", cmd())
	}
}

func TestInlineErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.json"), "File not found"},
		{"not an import", writeImport(t, `{"shelves": []}`), "no \"books\" array"},
		{"empty list", writeImport(t, `[]`), "No books in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New([]string{tt.path})

			_, cmd := p.Update(key("enter"))
			if cmd != nil {
				t.Fatalf("expected no selection, got %#v", cmd())
			}
			if !strings.Contains(p.Err(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, p.Err())
			}
			if !strings.Contains(p.View(), tt.wantErr) {
				t.Error("expected the error in the view")
			}

			p.Update(key("down"))
			if p.Err() != "" {
				t.Error("expected any key to clear the error")
			}
		})
	}
}

func TestEmptyPathRequired(t *testing.T) {
	p := New(nil)
	p.Init()

	p.Update(key("enter"))
	if p.Err() != "Please enter a file path" {
		t.Errorf("unexpected error %q", p.Err())
	}
}

func TestEscCancels(t *testing.T) {
	p := New([]string{"/a.json"})

	_, cmd := p.Update(key("esc"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("expected CancelledMsg, got %T", cmd())
	}
}

func TestTruncate(t *testing.T) {
	long := "/very/long/path/to/some/deeply/nested/books.json"
	got := truncate(long, 20)
	if len(got) != 20 || !strings.HasSuffix(got, "books.json") || !strings.HasPrefix(got, "...") {
		t.Errorf("truncate() = %q", got)
	}
	if truncate("/short.json", 20) != "/short.json" {
		t.Error("short paths should be unchanged")
	}
}
