// ABOUTME: Tests for the root command, global flag handling and exit codes
// ABOUTME: Provides the fake-backend fixture shared by the command tests

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/charmbracelet/huh"

	"github.com/minilibrary/library/internal/catalog"
	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/client/clienttest"
	"github.com/minilibrary/library/internal/config"
	"github.com/minilibrary/library/internal/session"
	"github.com/minilibrary/library/internal/store"
)

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

var defaultAskFields, defaultAskConfirm = askFields, askConfirm

// withBackend points the global flags at a fake backend with one admin,
// one user and an empty, isolated config directory.
func withBackend(t *testing.T) *clienttest.Server {
	t.Helper()

	for _, key := range []string{config.EnvAPIURL, config.EnvConfigDir, config.EnvStore, config.EnvLogLevel, config.EnvLogFormat, config.EnvStrictVerify, config.EnvTimeout} {
		t.Setenv(key, "")
	}

	srv := clienttest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddAccount(clienttest.Account{Name: "Ada", Email: "ada@example.com", Password: "secret1", Role: "admin"}, adminToken)
	srv.AddAccount(clienttest.Account{Name: "Bob", Email: "bob@example.com", Password: "hunter22", Role: "user"}, userToken)

	apiURL = srv.URL
	configDir = t.TempDir()
	logLevel = "error"
	logOutput = io.Discard
	askFields = func(context.Context, []promptField) error {
		t.Fatal("unexpected prompt")
		return nil
	}
	askConfirm = func(context.Context, string, string) (bool, error) {
		t.Fatal("unexpected confirmation prompt")
		return false, nil
	}

	t.Cleanup(resetFlags)
	return srv
}

func resetFlags() {
	apiURL, configDir, storeBackend, logLevel = "", "", "", ""
	jsonOutput = false
	logOutput = os.Stderr
	loginEmail, loginPassword = "", ""
	registerName, registerEmail, registerPassword, registerRole = "", "", "", "user"
	bookTitle, bookAuthor, bookDescription = "", "", ""
	deleteYes = false
	askFields, askConfirm = defaultAskFields, defaultAskConfirm
}

// storedToken reads the token the commands persisted
func storedToken(t *testing.T) string {
	t.Helper()
	token, err := store.NewFileStore(configDir).Load()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	return token
}

// signIn persists token as if a previous login had stored it
func signIn(t *testing.T, token string) {
	t.Helper()
	if err := store.NewFileStore(configDir).Save(token); err != nil {
		t.Fatalf("save token: %v", err)
	}
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	withBackend(t)
	storeBackend = "sqlite"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != apiURL {
		t.Errorf("expected API URL %s, got %s", apiURL, cfg.APIURL)
	}
	if cfg.ConfigDir != configDir {
		t.Errorf("expected config dir %s, got %s", configDir, cfg.ConfigDir)
	}
	if cfg.Store != store.BackendSQLite || cfg.LogLevel != "error" {
		t.Errorf("expected flag values, got %+v", cfg)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	withBackend(t)
	apiURL = ""
	t.Setenv(config.EnvAPIURL, "http://backend.example.com")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://backend.example.com" {
		t.Errorf("expected http://backend.example.com, got %s", cfg.APIURL)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	withBackend(t)
	storeBackend = "sqlite"
	loginEmail, loginPassword = "ada@example.com", "secret1"

	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}

	buf.Reset()
	if code := runWhoami(context.Background(), &buf); code != 0 {
		t.Fatalf("expected the sqlite session to be restored, got %d: %s", code, buf.String())
	}
	if storedToken(t) != "" {
		t.Error("expected nothing in the file store when sqlite is selected")
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"auth", &session.AuthError{Message: "Invalid credentials"}, 1},
		{"validation", &session.ValidationError{Message: "All fields are required"}, 1},
		{"catalog validation", &catalog.ValidationError{Message: "Title is required"}, 1},
		{"rejected", fmt.Errorf("%w: %w", session.ErrSessionRejected, &client.APIError{StatusCode: 401}), 1},
		{"forbidden", catalog.ErrForbidden, 1},
		{"not authenticated", catalog.ErrNotAuthenticated, 1},
		{"aborted", huh.ErrUserAborted, 1},
		{"not found", &client.APIError{StatusCode: 404, Message: "Book not found"}, 1},
		{"server error", &client.APIError{StatusCode: 500}, 2},
		{"unavailable", fmt.Errorf("%w: %w", session.ErrVerifyUnavailable, &client.APIError{StatusCode: 503}), 2},
		{"network", &client.NetworkError{Op: "list books", Err: errors.New("connection refused")}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
