// ABOUTME: Shared output, exit code and prompt helpers for CLI commands
// ABOUTME: Maps session and catalog errors onto exit codes 1 and 2

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"

	"github.com/minilibrary/library/internal/catalog"
	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/session"
	"github.com/minilibrary/library/internal/tui/theme"
)

// exitCode returns 1 for errors the user can fix (bad input, bad
// credentials, missing rights) and 2 for everything else.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var (
		authErr    *session.AuthError
		valErr     *session.ValidationError
		catalogErr *catalog.ValidationError
	)
	switch {
	case errors.As(err, &authErr),
		errors.As(err, &valErr),
		errors.As(err, &catalogErr),
		errors.Is(err, session.ErrSessionRejected),
		errors.Is(err, catalog.ErrForbidden),
		errors.Is(err, catalog.ErrNotAuthenticated),
		errors.Is(err, huh.ErrUserAborted),
		client.IsRejected(err):
		return 1
	}
	return 2
}

// fail prints err and returns its exit code
func fail(w io.Writer, err error) int {
	msg := session.UserMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintf(w, "Error: %s\n", msg)
	return exitCode(err)
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}

// promptField is one value asked for interactively
type promptField struct {
	Title  string
	Value  *string
	Secret bool
}

// askFields asks for the given fields; tests replace it
var askFields = func(ctx context.Context, fields []promptField) error {
	inputs := make([]huh.Field, 0, len(fields))
	for _, f := range fields {
		in := huh.NewInput().Title(f.Title).Value(f.Value)
		if f.Secret {
			in = in.EchoMode(huh.EchoModePassword)
		}
		inputs = append(inputs, in)
	}
	return huh.NewForm(huh.NewGroup(inputs...)).WithTheme(theme.Form()).RunWithContext(ctx)
}

// askConfirm asks a yes/no question; tests replace it
var askConfirm = func(ctx context.Context, question, detail string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			Description(detail).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&ok),
	)).WithTheme(theme.Form()).RunWithContext(ctx)
	return ok, err
}

// missing returns prompt fields for the empty values only
func missing(fields ...promptField) []promptField {
	var out []promptField
	for _, f := range fields {
		if *f.Value == "" {
			out = append(out, f)
		}
	}
	return out
}

// userView is the JSON shape of the signed-in user
type userView struct {
	ID    client.ID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func newUserView(u *client.User) *userView {
	if u == nil {
		return nil
	}
	return &userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()}
}
