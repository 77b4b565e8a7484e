// ABOUTME: In-memory fake of the library backend for tests
// ABOUTME: Serves auth and book endpoints over httptest with inspectable state

package clienttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Account is a registered user of the fake backend
type Account struct {
	ID       any    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

// Book mirrors the backend's storage shape, including its "_id" key
type Book struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description"`
}

// Server is a fake backend. Zero-valued knobs mean normal behaviour.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*Account // by email
	tokens   map[string]string   // token -> email
	books    []Book
	nextID   int
	requests map[string]int // "METHOD /path" -> count

	// set by HoldNextList
	listRead    chan struct{}
	listRelease chan struct{}

	// VerifyStatus forces a status code on /api/auth/verify
	VerifyStatus int
	// VerifyWithoutUser makes /api/auth/verify answer 200 with no user
	VerifyWithoutUser bool
	// OmitToken makes login/register answer 200 without a token
	OmitToken bool
	// OmitUser makes login/register answer with a token but no user
	OmitUser bool
	// BooksStatus forces a status code on /api/books
	BooksStatus int
}

// NewServer starts a fake backend. Call Close when done.
func NewServer() *Server {
	s := &Server{
		accounts: make(map[string]*Account),
		tokens:   make(map[string]string),
		requests: make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.HandleFunc("/api/auth/register", s.handleRegister)
	mux.HandleFunc("/api/auth/verify", s.handleVerify)
	mux.HandleFunc("/api/books", s.handleBooks)
	mux.HandleFunc("/api/books/", s.handleBook)
	s.Server = httptest.NewServer(s.count(mux))
	return s
}

// AddAccount registers an account and returns a token already issued for it
func (s *Server) AddAccount(acct Account, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct.ID == nil {
		s.nextID++
		acct.ID = fmt.Sprintf("u%d", s.nextID)
	}
	a := acct
	s.accounts[acct.Email] = &a
	if token != "" {
		s.tokens[token] = acct.Email
	}
}

// RevokeToken makes a previously issued token invalid
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// AddBook stores a book directly
func (s *Server) AddBook(b Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		s.nextID++
		b.ID = fmt.Sprintf("b%d", s.nextID)
	}
	s.books = append(s.books, b)
}

// HoldNextList makes the next GET /api/books read the listing and then wait
// for release before answering. read is closed once the listing was read.
func (s *Server) HoldNextList() (read <-chan struct{}, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listRead = make(chan struct{})
	s.listRelease = make(chan struct{})
	var once sync.Once
	held := s.listRelease
	return s.listRead, func() { once.Do(func() { close(held) }) }
}

// Books returns a copy of the stored books
func (s *Server) Books() []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out
}

// Requests returns how many times "METHOD /path" was called
func (s *Server) Requests(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[key]
}

// TotalRequests returns the number of requests served
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.requests {
		n += c
	}
	return n
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) issue(w http.ResponseWriter, acct *Account) {
	if s.OmitToken {
		writeJSON(w, http.StatusOK, map[string]string{"message": "token service unavailable"})
		return
	}
	s.nextID++
	token := fmt.Sprintf("t%d", s.nextID)
	s.tokens[token] = acct.Email
	body := map[string]any{"token": token}
	if !s.OmitUser {
		body["user"] = acct
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[req.Email]
	if !ok || acct.Password != req.Password {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
		return
	}
	s.issue(w, acct)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
		return
	}
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
		return
	}
	s.nextID++
	acct := &Account{
		ID:       fmt.Sprintf("u%d", s.nextID),
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
	s.accounts[req.Email] = acct
	s.issue(w, acct)
}

func (s *Server) authorized(r *http.Request) (*Account, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	email, ok := s.tokens[token]
	if !ok || token == "" {
		return nil, false
	}
	acct, ok := s.accounts[email]
	return acct, ok
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.VerifyStatus != 0 {
		writeJSON(w, s.VerifyStatus, map[string]string{"message": "verification failed"})
		return
	}
	acct, ok := s.authorized(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
		return
	}
	if s.VerifyWithoutUser {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": acct})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.listBooks(w)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.BooksStatus != 0 {
		writeJSON(w, s.BooksStatus, map[string]string{"error": "books unavailable"})
		return
	}

	switch r.Method {
	case http.MethodPost:
		acct, ok := s.authorized(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		if acct.Role != "admin" {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "Admin access required"})
			return
		}
		var b Book
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
			return
		}
		s.nextID++
		b.ID = fmt.Sprintf("b%d", s.nextID)
		s.books = append(s.books, b)
		writeJSON(w, http.StatusCreated, b)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
	}
}

// listBooks answers GET /api/books, honouring HoldNextList
func (s *Server) listBooks(w http.ResponseWriter) {
	s.mu.Lock()
	if s.BooksStatus != 0 {
		status := s.BooksStatus
		s.mu.Unlock()
		writeJSON(w, status, map[string]string{"error": "books unavailable"})
		return
	}
	books := make([]Book, len(s.books))
	copy(books, s.books)
	read, release := s.listRead, s.listRelease
	s.listRead, s.listRelease = nil, nil
	s.mu.Unlock()

	if read != nil {
		close(read)
		<-release
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "method not allowed"})
		return
	}
	acct, ok := s.authorized(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}
	if acct.Role != "admin" {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Admin access required"})
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/books/")
	for i, b := range s.books {
		if b.ID == id {
			s.books = append(s.books[:i], s.books[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Book deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Book not found"})
}
