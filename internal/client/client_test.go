// ABOUTME: Tests for the library API client
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("expected path /api/auth/login, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if r.Header.Get(RequestIDHeader) == "" {
			t.Error("expected request id header")
		}
		var req LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "a@x.com" || req.Password != "secret" {
			t.Errorf("unexpected credentials %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"t1","user":{"id":1,"name":"A","role":"admin"}}`))
	}))
	defer server.Close()

	c := New(server.URL)
	resp, err := c.Login(context.Background(), "a@x.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Token != "t1" {
		t.Errorf("expected token t1, got %s", resp.Token)
	}
	if resp.User == nil || resp.User.ID != "1" || resp.User.Role != RoleAdmin {
		t.Errorf("unexpected user %+v", resp.User)
	}
}

func TestLogin_ServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Login(context.Background(), "a@x.com", "nope")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Invalid credentials" {
		t.Errorf("expected server message, got %q", apiErr.Message)
	}
	if !IsRejected(err) {
		t.Error("expected 400 to count as rejected")
	}
}

func TestErrorResponse_ErrorField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal error"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.ListBooks(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "internal error" {
		t.Errorf("expected message from error field, got %q", apiErr.Message)
	}
	if IsRejected(err) {
		t.Error("5xx must not count as rejected")
	}
}

func TestErrorResponse_NoBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Verify(context.Background(), "t1")
	if err == nil || err.Error() != "backend returned status 401" {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestVerify_SendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/verify" {
			t.Errorf("expected path /api/auth/verify, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer t1" {
			t.Errorf("expected bearer header, got %q", got)
		}
		w.Write([]byte(`{"user":{"_id":"64a1","name":"A","email":"a@x.com","role":"user"}}`))
	}))
	defer server.Close()

	c := New(server.URL)
	resp, err := c.Verify(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.User == nil || resp.User.ID != "64a1" {
		t.Errorf("expected user with _id 64a1, got %+v", resp.User)
	}
}

func TestVerify_MissingUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := New(server.URL)
	resp, err := c.Verify(context.Background(), "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.User != nil {
		t.Errorf("expected nil user, got %+v", resp.User)
	}
}

func TestListBooks_DecodesMongoIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("listing must not send a bearer token")
		}
		w.Write([]byte(`[{"_id":"b1","title":"Dune","author":"Herbert","description":"Spice"},{"id":"b2","title":"Untitled"}]`))
	}))
	defer server.Close()

	c := New(server.URL)
	books, err := c.ListBooks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].ID != "b1" || books[1].ID != "b2" {
		t.Errorf("unexpected ids %q %q", books[0].ID, books[1].ID)
	}
	if books[1].DisplayAuthor() != "Unknown" {
		t.Errorf("expected Unknown author fallback, got %q", books[1].DisplayAuthor())
	}
}

func TestListBooks_NullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer server.Close()

	books, err := New(server.URL).ListBooks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if books == nil || len(books) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", books)
	}
}

func TestListBooks_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	_, err := New(server.URL).ListBooks(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError for unparseable body, got %v", err)
	}
}

func TestListBooks_ConcurrentCallsShareRequest(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`[{"_id":"b1","title":"Dune"}]`))
	}))
	defer server.Close()

	c := New(server.URL)
	var wg sync.WaitGroup
	results := make([][]Book, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.ListBooks(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := hits.Load(); n < 1 || n > 5 {
		t.Fatalf("unexpected hit count %d", n)
	}
	for i, r := range results {
		if len(r) != 1 {
			t.Errorf("caller %d: expected 1 book, got %d", i, len(r))
		}
	}
	results[0][0].Title = "changed"
	if results[1][0].Title != "Dune" {
		t.Error("callers must not share the same backing slice")
	}
}

func TestCreateBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/books" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer t1" {
			t.Errorf("expected bearer header, got %q", got)
		}
		var in BookInput
		json.NewDecoder(r.Body).Decode(&in)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"_id": "b9", "title": in.Title, "author": in.Author})
	}))
	defer server.Close()

	book, err := New(server.URL).CreateBook(context.Background(), "t1", BookInput{Title: "Dune", Author: "Herbert"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if book.ID != "b9" || book.Title != "Dune" {
		t.Errorf("unexpected book %+v", book)
	}
}

func TestDeleteBook_EscapesID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if r.URL.EscapedPath() != "/api/books/a%2Fb" {
			t.Errorf("expected escaped id, got %s", r.URL.EscapedPath())
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := New(server.URL).DeleteBook(context.Background(), "t1", "a/b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConnectionError(t *testing.T) {
	c := New("http://localhost:99999")
	_, err := c.ListBooks(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := New(server.URL).Verify(ctx, "t1")
	if !errors.Is(err, errRequestCanceled) {
		t.Errorf("expected canceled error, got %v", err)
	}
}

func TestContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := New(server.URL).Verify(ctx, "t1")
	if !errors.Is(err, errRequestTimedOut) {
		t.Errorf("expected timed out error, got %v", err)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:5000/")
	if c.BaseURL() != "http://localhost:5000" {
		t.Errorf("expected trimmed base URL, got %s", c.BaseURL())
	}
}

func TestRoleJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{`"admin"`, RoleAdmin},
		{`"ADMIN"`, RoleUser},
		{`"Admin"`, RoleUser},
		{`"user"`, RoleUser},
		{`"librarian"`, RoleUser},
		{`null`, RoleUser},
		{`42`, RoleUser},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			var r Role
			if err := json.Unmarshal([]byte(tc.in), &r); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r != tc.want {
				t.Errorf("expected %v, got %v", tc.want, r)
			}
		})
	}

	data, _ := json.Marshal(RegisterRequest{Role: RoleAdmin})
	var raw map[string]any
	json.Unmarshal(data, &raw)
	if raw["role"] != "admin" {
		t.Errorf("expected role to encode as admin, got %v", raw["role"])
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(""); err != nil || r != RoleUser {
		t.Errorf("expected empty role to default to user, got %v %v", r, err)
	}
	if r, err := ParseRole("Admin"); err != nil || r != RoleAdmin {
		t.Errorf("expected admin, got %v %v", r, err)
	}
	if _, err := ParseRole("root"); err == nil {
		t.Error("expected error for unknown role")
	}
}
