// ABOUTME: Books commands for the library CLI
// ABOUTME: Lists the catalog and runs admin add, delete and bulk import

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/minilibrary/library/internal/catalog"
	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/session"
	"github.com/minilibrary/library/internal/tui/confirm"
)

var (
	bookTitle       string
	bookAuthor      string
	bookDescription string
	deleteYes       bool
)

const booksExitCodes = `
Exit codes:
  0 - Success
  1 - Invalid input, not logged in, or admin access required
  2 - Error (connectivity, configuration)`

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List and manage books",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all books",
	Long:  "List every book in the catalog.\n" + booksExitCodes,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runBooksList(ctx, os.Stdout) })
	},
}

var booksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a book (admin)",
	Long:  "Add a book to the catalog. Requires an admin session.\n" + booksExitCodes,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runBooksAdd(ctx, os.Stdout) })
	},
}

var booksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a book (admin)",
	Long:  "Delete a book after confirmation. Requires an admin session.\n" + booksExitCodes,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runBooksDelete(ctx, os.Stdout, args[0]) })
	},
}

var booksImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Create books from a JSON file (admin)",
	Long: `Create every book in a JSON file, in order. The file holds either an
array of {"title", "author", "description"} objects or {"books": [...]}.
Import stops at the first book the backend refuses.
` + booksExitCodes,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runWithSignals(func(ctx context.Context) int { return runBooksImport(ctx, os.Stdout, args[0]) })
	},
}

func init() {
	rootCmd.AddCommand(booksCmd)
	booksCmd.AddCommand(booksListCmd, booksAddCmd, booksDeleteCmd, booksImportCmd)

	booksAddCmd.Flags().StringVar(&bookTitle, "title", "", "Book title (required)")
	booksAddCmd.Flags().StringVar(&bookAuthor, "author", "", "Book author")
	booksAddCmd.Flags().StringVar(&bookDescription, "description", "", "Book description")

	booksDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

// runWithSignals runs fn with a context canceled on SIGINT/SIGTERM and exits non-zero on failure
func runWithSignals(fn func(ctx context.Context) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := fn(ctx)
	cancel()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// runBooksList prints the listing and returns exit code
func runBooksList(ctx context.Context, w io.Writer) int {
	d, err := cliDeps()
	if err != nil {
		return fail(w, err)
	}
	defer d.Close()

	books, err := d.catalog.List(ctx)
	if err != nil {
		return fail(w, err)
	}
	printBooks(w, books)
	return 0
}

// runBooksAdd creates a book and returns exit code
func runBooksAdd(ctx context.Context, w io.Writer) int {
	d, err := adminDeps(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer d.Close()

	books, err := d.catalog.Add(ctx, client.BookInput{
		Title:       bookTitle,
		Author:      bookAuthor,
		Description: bookDescription,
	})
	if err != nil {
		return fail(w, err)
	}

	if !IsJSONOutput() {
		fmt.Fprintf(w, "Added %q\n\n", strings.TrimSpace(bookTitle))
	}
	printBooks(w, books)
	return 0
}

// runBooksDelete deletes a book after confirmation and returns exit code
func runBooksDelete(ctx context.Context, w io.Writer, id string) int {
	d, err := adminDeps(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer d.Close()

	if !deleteYes {
		ok, err := askConfirm(ctx, confirm.DeleteBookQuestion, describeBook(ctx, d.catalog, client.ID(id)))
		if err != nil {
			return fail(w, err)
		}
		if !ok {
			fmt.Fprintln(w, "Canceled")
			return 1
		}
	}

	books, err := d.catalog.Delete(ctx, client.ID(id))
	if err != nil {
		return fail(w, err)
	}

	if !IsJSONOutput() {
		fmt.Fprintf(w, "Deleted %s\n\n", id)
	}
	printBooks(w, books)
	return 0
}

// runBooksImport creates books from a file and returns exit code
func runBooksImport(ctx context.Context, w io.Writer, path string) int {
	inputs, err := catalog.LoadImportFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}

	d, err := adminDeps(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer d.Close()

	created, books, err := d.catalog.Import(ctx, inputs)
	if err != nil {
		fmt.Fprintf(w, "Imported %d of %d books\n", created, len(inputs))
		return fail(w, err)
	}

	if IsJSONOutput() {
		printJSON(w, struct {
			Created int           `json:"created"`
			Books   []client.Book `json:"books"`
		}{created, books})
		return 0
	}
	fmt.Fprintf(w, "Imported %d books\n\n", created)
	printBooks(w, books)
	return 0
}

// adminDeps wires dependencies and verifies the stored session. Admin
// rights are checked by the catalog itself.
func adminDeps(ctx context.Context) (*deps, error) {
	d, err := cliDeps()
	if err != nil {
		return nil, err
	}
	if err := d.sessions.Init(ctx); err != nil {
		d.Close()
		return nil, err
	}
	if d.sessions.State() != session.StateAuthenticated {
		d.Close()
		return nil, catalog.ErrNotAuthenticated
	}
	return d, nil
}

// describeBook returns a one-line description of id for the confirmation prompt
func describeBook(ctx context.Context, cat *catalog.Catalog, id client.ID) string {
	books, err := cat.List(ctx)
	if err == nil {
		for _, b := range books {
			if b.ID == id {
				return fmt.Sprintf("%s by %s", b.Title, b.DisplayAuthor())
			}
		}
	}
	return fmt.Sprintf("Book %s", id)
}

// printBooks writes the listing as a table or JSON
func printBooks(w io.Writer, books []client.Book) {
	if IsJSONOutput() {
		if books == nil {
			books = []client.Book{}
		}
		printJSON(w, books)
		return
	}
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tDESCRIPTION")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Title, b.DisplayAuthor(), b.Description)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d books\n", len(books))
}
