// ABOUTME: Logout command for the library CLI
// ABOUTME: Forgets the persisted session token

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Long: `Forget the stored session token. Running it while logged out is not an error.

Exit codes:
  0 - Logged out
  2 - Error (configuration, token storage)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogout(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout clears the session and returns exit code
func runLogout(_ context.Context, w io.Writer) int {
	d, err := cliDeps()
	if err != nil {
		return fail(w, err)
	}
	defer d.Close()

	if err := d.sessions.Logout(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		printJSON(w, map[string]string{"state": d.sessions.State().String()})
	} else {
		fmt.Fprintln(w, "Logged out")
	}
	return 0
}
