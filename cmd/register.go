// ABOUTME: Register command for the library CLI
// ABOUTME: Creates an account and logs into it in one step

package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/session"
)

var (
	registerName     string
	registerEmail    string
	registerPassword string
	registerRole     string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Long: `Create an account and log into it. Missing values are prompted for.
The password must be at least 6 characters.

Exit codes:
  0 - Registered and logged in
  1 - Invalid input or account already exists
  2 - Error (connectivity, configuration, token storage)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runRegister(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerRole, "role", "user", "Account role: user or admin")
}

// runRegister creates an account and returns exit code
func runRegister(ctx context.Context, w io.Writer) int {
	role, err := client.ParseRole(registerRole)
	if err != nil {
		return fail(w, &session.ValidationError{Message: err.Error()})
	}

	d, err := cliDeps()
	if err != nil {
		return fail(w, err)
	}
	defer d.Close()

	in := session.RegisterInput{
		Name:     registerName,
		Email:    registerEmail,
		Password: registerPassword,
		Role:     role,
	}
	if fields := missing(
		promptField{Title: "Name", Value: &in.Name},
		promptField{Title: "Email", Value: &in.Email},
		promptField{Title: "Password", Value: &in.Password, Secret: true},
	); len(fields) > 0 {
		if err := askFields(ctx, fields); err != nil {
			return fail(w, err)
		}
	}

	err = d.sessions.Register(ctx, in)
	return reportAuth(w, d.sessions.Current(), err, "Registered")
}
