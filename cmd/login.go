// ABOUTME: Login command for the library CLI
// ABOUTME: Authenticates with email and password and persists the session token

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minilibrary/library/internal/session"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Long: `Log in with email and password. Missing values are prompted for.

Exit codes:
  0 - Logged in
  1 - Invalid credentials or input
  2 - Error (connectivity, configuration, token storage)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
}

// runLogin logs in and returns exit code
func runLogin(ctx context.Context, w io.Writer) int {
	d, err := cliDeps()
	if err != nil {
		return fail(w, err)
	}
	defer d.Close()

	email, password := loginEmail, loginPassword
	if fields := missing(
		promptField{Title: "Email", Value: &email},
		promptField{Title: "Password", Value: &password, Secret: true},
	); len(fields) > 0 {
		if err := askFields(ctx, fields); err != nil {
			return fail(w, err)
		}
	}

	err = d.sessions.Login(ctx, email, password)
	return reportAuth(w, d.sessions.Current(), err, "Logged in")
}

// reportAuth prints the outcome of a login or registration. A session that
// authenticated but could not be persisted is reported with exit code 2.
func reportAuth(w io.Writer, sess session.Session, err error, verb string) int {
	if err != nil && sess.State() != session.StateAuthenticated {
		return fail(w, err)
	}

	if IsJSONOutput() {
		printJSON(w, struct {
			State string    `json:"state"`
			User  *userView `json:"user"`
		}{sess.State().String(), newUserView(sess.User)})
	} else {
		fmt.Fprintf(w, "%s as %s <%s> (%s)\n", verb, sess.User.Name, sess.User.Email, sess.User.Role)
	}

	if err != nil {
		fmt.Fprintf(w, "Warning: session will not survive this command: %v\n", err)
		return 2
	}
	return 0
}
