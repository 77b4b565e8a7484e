// ABOUTME: Book endpoint calls for the library API client
// ABOUTME: Listing is public; create and delete require a bearer token

package client

import (
	"context"
	"net/http"
	"net/url"
)

const listKey = "books"

// ListBooks calls GET /api/books.
// Concurrent calls share one in-flight request.
func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	v, err, _ := c.listGroup.Do(listKey, func() (interface{}, error) {
		var books []Book
		if err := c.do(ctx, "list books", http.MethodGet, "/api/books", "", nil, &books); err != nil {
			return nil, err
		}
		if books == nil {
			books = []Book{}
		}
		return books, nil
	})
	if err != nil {
		return nil, err
	}

	// each caller gets its own slice
	shared := v.([]Book)
	books := make([]Book, len(shared))
	copy(books, shared)
	return books, nil
}

// RefreshBooks calls GET /api/books without joining a listing that is
// already in flight, so the result reflects every change made before the call.
// Later ListBooks calls share the fresh request.
func (c *Client) RefreshBooks(ctx context.Context) ([]Book, error) {
	c.listGroup.Forget(listKey)
	return c.ListBooks(ctx)
}

// CreateBook calls POST /api/books
func (c *Client) CreateBook(ctx context.Context, token string, input BookInput) (*Book, error) {
	var book Book
	if err := c.do(ctx, "create book", http.MethodPost, "/api/books", token, input, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook calls DELETE /api/books/{id}
func (c *Client) DeleteBook(ctx context.Context, token string, id ID) error {
	return c.do(ctx, "delete book", http.MethodDelete, "/api/books/"+url.PathEscape(string(id)), token, nil, nil)
}
