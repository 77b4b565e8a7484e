// ABOUTME: Session store: single source of truth for who is logged in
// ABOUTME: Handles login, registration, logout and verification of a restored token

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/store"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

// State is the authentication state of a Session
type State int

const (
	StateAnonymous State = iota
	StatePendingVerification
	StateAuthenticated
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StatePendingVerification:
		return "pending"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a snapshot of the current authentication state.
// User is non-nil only once the token is known to be valid.
type Session struct {
	Token string
	User  *client.User
}

// State derives the state machine position from the snapshot
func (s Session) State() State {
	switch {
	case s.Token == "":
		return StateAnonymous
	case s.User == nil:
		return StatePendingVerification
	default:
		return StateAuthenticated
	}
}

// IsAdmin reports whether the session belongs to an authenticated admin
func (s Session) IsAdmin() bool {
	return s.State() == StateAuthenticated && s.User.IsAdmin()
}

// AuthAPI is the part of the API client the session store needs
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Register(ctx context.Context, input client.RegisterRequest) (*client.AuthResponse, error)
	Verify(ctx context.Context, token string) (*client.VerifyResponse, error)
}

// RegisterInput holds the registration form; Role defaults to RoleUser
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     client.Role
}

// Option configures a Store
type Option func(*Store)

// WithStrictVerify makes any verification failure log the session out,
// including network errors where the token may still be valid.
func WithStrictVerify(strict bool) Option {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithLogger sets the store's logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store owns the session. It is safe for concurrent use and is passed by
// handle to every consumer that needs to read or change the session.
type Store struct {
	api    AuthAPI
	tokens store.TokenStore
	strict bool
	log    *slog.Logger

	mu    sync.RWMutex
	token string
	user  *client.User

	subMu   sync.Mutex
	subs    map[int]func(Session)
	nextSub int
}

// New creates an anonymous session store. Call Restore (or Init) to pick up
// a token persisted by a previous run.
func New(api AuthAPI, tokens store.TokenStore, opts ...Option) *Store {
	s := &Store{
		api:    api,
		tokens: tokens,
		log:    slog.Default(),
		subs:   make(map[int]func(Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns a snapshot of the session
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Session {
	sess := Session{Token: s.token}
	if s.user != nil {
		u := *s.user
		sess.User = &u
	}
	return sess
}

// State returns the current state
func (s *Store) State() State {
	return s.Current().State()
}

// Token returns the current token, or "" when anonymous
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers fn to be called with the new snapshot after every change.
// Callbacks run on the goroutine that made the change.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	snap := s.Current()

	s.subMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Restore loads a persisted token. A present token moves an anonymous
// session to pending verification; Verify must follow.
func (s *Store) Restore() error {
	token, err := s.tokens.Load()
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return nil
	}

	s.mu.Lock()
	if s.token != "" {
		s.mu.Unlock()
		return nil
	}
	s.token = token
	s.user = nil
	s.mu.Unlock()

	s.log.Debug("Restored persisted session token")
	s.notify()
	return nil
}

// Init restores a persisted token and verifies it
func (s *Store) Init(ctx context.Context) error {
	if err := s.Restore(); err != nil {
		return err
	}
	return s.Verify(ctx)
}

// Login authenticates with email and password. On failure the previous
// session is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return &ValidationError{Message: "Email and password are required"}
	}

	resp, err := s.api.Login(ctx, email, password)
	return s.finishAuth(ctx, "login", resp, err, msgLoginFailed)
}

// Register creates an account and logs into it. Input is validated locally
// before any request is sent.
func (s *Store) Register(ctx context.Context, in RegisterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return &ValidationError{Message: "All fields are required"}
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return &ValidationError{Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)}
	}

	resp, err := s.api.Register(ctx, client.RegisterRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	})
	return s.finishAuth(ctx, "register", resp, err, msgRegistrationFailed)
}

func (s *Store) finishAuth(ctx context.Context, op string, resp *client.AuthResponse, err error, fallback string) error {
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			s.log.Info("Authentication rejected", "op", op, "status", apiErr.StatusCode)
			return &AuthError{Message: orDefault(apiErr.Message, fallback)}
		}
		s.log.Warn("Authentication request failed", "op", op, "error", err)
		return err
	}
	if resp == nil || resp.Token == "" {
		msg := ""
		if resp != nil {
			msg = resp.Message
		}
		s.log.Info("Authentication response without token", "op", op)
		return &AuthError{Message: orDefault(msg, fallback)}
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = resp.User
	s.mu.Unlock()

	var persistErr error
	if err := s.tokens.Save(resp.Token); err != nil {
		s.log.Warn("Failed to persist session token", "error", err)
		persistErr = fmt.Errorf("persist token: %w", err)
	}

	s.notify()

	if resp.User == nil {
		// token issued without identity: resolve it now
		if err := s.Verify(ctx); err != nil {
			return err
		}
	} else {
		s.log.Info("Authenticated", "op", op, "user", resp.User.Email, "role", resp.User.Role.String())
	}
	return persistErr
}

// Logout clears the persisted token, the in-memory token and the user.
// It is idempotent; the in-memory session is cleared even if persistence fails.
func (s *Store) Logout() error {
	s.mu.Lock()
	changed := s.token != "" || s.user != nil
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	err := s.tokens.Clear()
	if changed {
		s.log.Info("Logged out")
		s.notify()
	}
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// Verify checks a pending token against the backend. It does nothing unless
// the session is pending verification.
//
// A rejected token (4xx, or a 2xx without a user) logs the session out and
// returns ErrSessionRejected. A network or 5xx failure returns an error
// wrapping ErrVerifyUnavailable and keeps the token, unless the store is
// strict, in which case the session is logged out as well.
func (s *Store) Verify(ctx context.Context) error {
	s.mu.RLock()
	token, verified := s.token, s.user != nil
	s.mu.RUnlock()
	if token == "" || verified {
		return nil
	}

	resp, err := s.api.Verify(ctx, token)
	switch {
	case err == nil && resp != nil && resp.User != nil:
		s.mu.Lock()
		if s.token != token || s.user != nil {
			// session moved on while the request was in flight
			s.mu.Unlock()
			return nil
		}
		s.user = resp.User
		s.mu.Unlock()

		s.log.Info("Session verified", "user", resp.User.Email, "role", resp.User.Role.String())
		s.notify()
		return nil

	case err == nil || client.IsRejected(err):
		s.log.Info("Session token rejected", "error", err)
		s.clearIfCurrent(token)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSessionRejected, err)
		}
		return ErrSessionRejected

	default:
		s.log.Warn("Session verification unavailable", "error", err, "strict", s.strict)
		if s.strict {
			s.clearIfCurrent(token)
		}
		return fmt.Errorf("%w: %w", ErrVerifyUnavailable, err)
	}
}

// clearIfCurrent logs out only if token is still the session's token
func (s *Store) clearIfCurrent(token string) {
	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		s.log.Warn("Failed to clear persisted token", "error", err)
	}
	s.notify()
}

func orDefault(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}
