// ABOUTME: Tests for the login, register, logout and whoami commands
// ABOUTME: Runs each command against the fake backend and checks exit codes and output

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minilibrary/library/internal/client/clienttest"
)

func TestLoginCommand_Success(t *testing.T) {
	withBackend(t)
	loginEmail, loginPassword = "ada@example.com", "secret1"

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Logged in as Ada <ada@example.com> (admin)") {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if storedToken(t) == "" {
		t.Error("expected the token to be persisted")
	}
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	withBackend(t)
	loginEmail, loginPassword = "ada@example.com", "wrong"

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Error: Invalid credentials") {
		t.Errorf("expected server message, got %q", buf.String())
	}
	if storedToken(t) != "" {
		t.Error("expected no token after a failed login")
	}
}

func TestLoginCommand_PromptsForMissingFields(t *testing.T) {
	withBackend(t)
	loginEmail = "bob@example.com"

	var asked []string
	askFields = func(_ context.Context, fields []promptField) error {
		for _, f := range fields {
			asked = append(asked, f.Title)
			if f.Secret {
				*f.Value = "hunter22"
			}
		}
		return nil
	}

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if len(asked) != 1 || asked[0] != "Password" {
		t.Errorf("expected only the password to be prompted, got %v", asked)
	}
}

func TestLoginCommand_EmptyPromptIsValidationError(t *testing.T) {
	srv := withBackend(t)
	askFields = func(context.Context, []promptField) error { return nil }

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Email and password are required") {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if srv.TotalRequests() != 0 {
		t.Errorf("expected no requests, got %d", srv.TotalRequests())
	}
}

func TestLoginCommand_JSON(t *testing.T) {
	withBackend(t)
	jsonOutput = true
	loginEmail, loginPassword = "bob@example.com", "hunter22"

	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}

	var out struct {
		State string
		User  userView
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if out.State != "authenticated" || out.User.Role != "user" || out.User.Name != "Bob" {
		t.Errorf("unexpected JSON: %+v", out)
	}
}

func TestLoginCommand_ConnectionError(t *testing.T) {
	withBackend(t)
	apiURL = "http://127.0.0.1:1"
	loginEmail, loginPassword = "ada@example.com", "secret1"

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf)

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Error:") {
		t.Error("expected error message in output")
	}
}

func TestLoginCommand_InvalidConfig(t *testing.T) {
	withBackend(t)
	apiURL = "ftp://nope"

	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
}

func TestRegisterCommand_Success(t *testing.T) {
	withBackend(t)
	registerName, registerEmail, registerPassword, registerRole = "Cy", "cy@example.com", "123456", "admin"

	var buf bytes.Buffer
	exitCode := runRegister(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Registered as Cy <cy@example.com> (admin)") {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if storedToken(t) == "" {
		t.Error("expected the token to be persisted")
	}
}

func TestRegisterCommand_Duplicate(t *testing.T) {
	withBackend(t)
	registerName, registerEmail, registerPassword = "Ada", "ada@example.com", "123456"

	var buf bytes.Buffer
	if code := runRegister(context.Background(), &buf); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "User already exists") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestRegisterCommand_Validation(t *testing.T) {
	tests := []struct {
		name     string
		password string
		role     string
		want     string
	}{
		{"short password", "12345", "user", "Password must be at least 6 characters"},
		{"bad role", "123456", "librarian", "invalid role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := withBackend(t)
			registerName, registerEmail, registerPassword, registerRole = "Cy", "cy@example.com", tt.password, tt.role

			var buf bytes.Buffer
			if code := runRegister(context.Background(), &buf); code != 1 {
				t.Errorf("expected exit code 1, got %d", code)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %q in output, got %q", tt.want, buf.String())
			}
			if srv.TotalRequests() != 0 {
				t.Errorf("expected no requests, got %d", srv.TotalRequests())
			}
		})
	}
}

func TestLogoutCommand(t *testing.T) {
	withBackend(t)
	signIn(t, adminToken)

	var buf bytes.Buffer
	if code := runLogout(context.Background(), &buf); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}
	if storedToken(t) != "" {
		t.Error("expected the token to be cleared")
	}

	buf.Reset()
	if code := runLogout(context.Background(), &buf); code != 0 {
		t.Errorf("expected logout to be idempotent, got %d", code)
	}
	if !strings.Contains(buf.String(), "Logged out") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestWhoamiCommand_Authenticated(t *testing.T) {
	withBackend(t)
	signIn(t, adminToken)

	var buf bytes.Buffer
	exitCode := runWhoami(context.Background(), &buf)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	for _, want := range []string{"Name:    Ada", "Email:   ada@example.com", "Role:    admin"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output, got %q", want, buf.String())
		}
	}
	if strings.Contains(buf.String(), "Expires:") {
		t.Error("opaque tokens have no expiry")
	}
}

func TestWhoamiCommand_NotLoggedIn(t *testing.T) {
	srv := withBackend(t)

	var buf bytes.Buffer
	if code := runWhoami(context.Background(), &buf); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "Not logged in") {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if srv.TotalRequests() != 0 {
		t.Errorf("expected no verification without a token, got %d requests", srv.TotalRequests())
	}
}

func TestWhoamiCommand_RevokedToken(t *testing.T) {
	srv := withBackend(t)
	signIn(t, adminToken)
	srv.RevokeToken(adminToken)

	var buf bytes.Buffer
	if code := runWhoami(context.Background(), &buf); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "session has expired") {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if storedToken(t) != "" {
		t.Error("expected a rejected token to be cleared")
	}
}

func TestWhoamiCommand_VerifyUnavailable(t *testing.T) {
	srv := withBackend(t)
	signIn(t, adminToken)
	srv.VerifyStatus = 503

	var buf bytes.Buffer
	if code := runWhoami(context.Background(), &buf); code != 2 {
		t.Errorf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(buf.String(), "could not be verified") {
		t.Errorf("unexpected output: %q", buf.String())
	}
	if storedToken(t) != adminToken {
		t.Error("expected the token to be kept when verification is unavailable")
	}
}

func TestWhoamiCommand_JWTExpiry(t *testing.T) {
	srv := withBackend(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u9",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	srv.AddAccount(clienttest.Account{Name: "Cy", Email: "cy@example.com", Password: "123456", Role: "user"}, token)
	signIn(t, token)
	jsonOutput = true

	var buf bytes.Buffer
	if code := runWhoami(context.Background(), &buf); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, buf.String())
	}

	var out whoamiResult
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, buf.String())
	}
	if out.ExpiresAt == nil || !out.ExpiresAt.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, out.ExpiresAt)
	}
	if out.User == nil || out.User.Name != "Cy" {
		t.Errorf("unexpected user: %+v", out.User)
	}
}
