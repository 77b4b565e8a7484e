// ABOUTME: Book catalog data flow shared by the dashboards and the CLI
// ABOUTME: Lists books and runs admin-only mutations, refetching the listing afterwards

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/session"
)

var (
	// ErrBusy is returned when a mutation is already in flight
	ErrBusy = errors.New("another change is in progress")
	// ErrNotAuthenticated is returned for mutations without a verified session
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrForbidden is returned for mutations by non-admin users
	ErrForbidden = errors.New("admin access required")
)

// ValidationError is a local input problem; no request was sent
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// BooksAPI is the part of the API client the catalog needs
type BooksAPI interface {
	ListBooks(ctx context.Context) ([]client.Book, error)
	RefreshBooks(ctx context.Context) ([]client.Book, error)
	CreateBook(ctx context.Context, token string, input client.BookInput) (*client.Book, error)
	DeleteBook(ctx context.Context, token string, id client.ID) error
}

// Sessions gives read access to the current session
type Sessions interface {
	Current() session.Session
}

// Catalog reads and changes the book listing on behalf of the current session
type Catalog struct {
	api      BooksAPI
	sessions Sessions
	log      *slog.Logger
	mutating atomic.Bool
}

// New creates a Catalog. A nil logger means slog.Default().
func New(api BooksAPI, sessions Sessions, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{api: api, sessions: sessions, log: log}
}

// List fetches the full listing
func (c *Catalog) List(ctx context.Context) ([]client.Book, error) {
	books, err := c.api.ListBooks(ctx)
	if err != nil {
		c.log.Error("Failed to fetch books", "error", err)
		return nil, err
	}
	c.log.Debug("Fetched books", "count", len(books))
	return books, nil
}

// Add creates a book and returns the refreshed listing
func (c *Catalog) Add(ctx context.Context, input client.BookInput) ([]client.Book, error) {
	input = normalize(input)
	if input.Title == "" {
		return nil, &ValidationError{Message: "Title is required"}
	}

	token, release, err := c.beginMutation()
	if err != nil {
		return nil, err
	}
	defer release()

	book, err := c.api.CreateBook(ctx, token, input)
	if err != nil {
		c.log.Error("Failed to add book", "title", input.Title, "error", err)
		return nil, err
	}
	c.log.Info("Added book", "id", string(book.ID), "title", book.Title)
	return c.refetch(ctx)
}

// Delete removes a book and returns the refreshed listing
func (c *Catalog) Delete(ctx context.Context, id client.ID) ([]client.Book, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, &ValidationError{Message: "Book id is required"}
	}

	token, release, err := c.beginMutation()
	if err != nil {
		return nil, err
	}
	defer release()

	if err := c.api.DeleteBook(ctx, token, id); err != nil {
		c.log.Error("Failed to delete book", "id", string(id), "error", err)
		return nil, err
	}
	c.log.Info("Deleted book", "id", string(id))
	return c.refetch(ctx)
}

// Import creates each input in order and refetches once at the end.
// It stops at the first failure; created counts the books added before it.
func (c *Catalog) Import(ctx context.Context, inputs []client.BookInput) (created int, books []client.Book, err error) {
	clean := make([]client.BookInput, len(inputs))
	for i, in := range inputs {
		clean[i] = normalize(in)
		if clean[i].Title == "" {
			return 0, nil, &ValidationError{Message: fmt.Sprintf("Title is required (entry %d)", i+1)}
		}
	}

	token, release, err := c.beginMutation()
	if err != nil {
		return 0, nil, err
	}
	defer release()

	for _, input := range clean {
		if err := ctx.Err(); err != nil {
			return created, nil, err
		}
		if _, err := c.api.CreateBook(ctx, token, input); err != nil {
			c.log.Error("Import stopped", "title", input.Title, "created", created, "error", err)
			return created, nil, fmt.Errorf("import %q: %w", input.Title, err)
		}
		created++
	}
	c.log.Info("Imported books", "count", created)

	books, err = c.refetch(ctx)
	return created, books, err
}

// Refresh fetches the listing without sharing a request that started
// earlier. Use it after changes made outside Add, Delete and Import.
func (c *Catalog) Refresh(ctx context.Context) ([]client.Book, error) {
	return c.refetch(ctx)
}

// refetch reads the listing after a change, never reusing a request that
// started before it
func (c *Catalog) refetch(ctx context.Context) ([]client.Book, error) {
	books, err := c.api.RefreshBooks(ctx)
	if err != nil {
		c.log.Error("Failed to refetch books", "error", err)
		return nil, err
	}
	c.log.Debug("Refetched books", "count", len(books))
	return books, nil
}

// beginMutation checks the session and claims the single mutation slot
func (c *Catalog) beginMutation() (token string, release func(), err error) {
	sess := c.sessions.Current()
	switch {
	case sess.State() != session.StateAuthenticated:
		return "", nil, ErrNotAuthenticated
	case !sess.IsAdmin():
		return "", nil, ErrForbidden
	}
	if !c.mutating.CompareAndSwap(false, true) {
		return "", nil, ErrBusy
	}
	return sess.Token, func() { c.mutating.Store(false) }, nil
}

func normalize(in client.BookInput) client.BookInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Description = strings.TrimSpace(in.Description)
	return in
}
