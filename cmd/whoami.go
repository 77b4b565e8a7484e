// ABOUTME: Whoami command for the library CLI
// ABOUTME: Restores and verifies the stored session, then prints the signed-in user

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/minilibrary/library/internal/session"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Verify the stored session with the backend and show the signed-in user.

Exit codes:
  0 - Authenticated
  1 - Not logged in, or the session was rejected
  2 - Error (the session could not be verified)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// whoamiResult is the JSON output of whoami
type whoamiResult struct {
	State     string     `json:"state"`
	User      *userView  `json:"user,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// runWhoami verifies the stored session and returns exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	d, err := cliDeps()
	if err != nil {
		return fail(w, err)
	}
	defer d.Close()

	err = d.sessions.Init(ctx)
	sess := d.sessions.Current()

	code := 0
	switch {
	case errors.Is(err, session.ErrVerifyUnavailable):
		code = 2
	case err != nil && !errors.Is(err, session.ErrSessionRejected):
		return fail(w, err)
	case sess.State() != session.StateAuthenticated:
		code = 1
	}

	result := whoamiResult{State: sess.State().String(), User: newUserView(sess.User)}
	if err != nil {
		result.Error = err.Error()
	}
	if claims, ok := session.ParseClaims(sess.Token); ok && !claims.ExpiresAt.IsZero() {
		exp := claims.ExpiresAt
		result.ExpiresAt = &exp
	}

	if IsJSONOutput() {
		printJSON(w, result)
		return code
	}
	fmt.Fprintln(w, formatWhoamiHuman(result, errors.Is(err, session.ErrSessionRejected)))
	return code
}

// formatWhoamiHuman formats the session for human readability
func formatWhoamiHuman(r whoamiResult, rejected bool) string {
	switch {
	case r.User != nil:
		out := fmt.Sprintf(`Name:    %s
Email:   %s
Role:    %s
User ID: %s`, r.User.Name, r.User.Email, r.User.Role, r.User.ID)
		if r.ExpiresAt != nil {
			out += fmt.Sprintf("\nExpires: %s", r.ExpiresAt.Local().Format(time.RFC1123))
		}
		return out
	case r.State == session.StatePendingVerification.String():
		return fmt.Sprintf("Session could not be verified: %s\nThe token was kept; try again later.", r.Error)
	case rejected:
		return "Not logged in (your session has expired, please log in again)"
	default:
		return "Not logged in"
	}
}
