// ABOUTME: Root command for the library CLI
// ABOUTME: Handles global flags, configuration and wiring of client, store and session

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/minilibrary/library/internal/catalog"
	"github.com/minilibrary/library/internal/client"
	"github.com/minilibrary/library/internal/config"
	"github.com/minilibrary/library/internal/logger"
	"github.com/minilibrary/library/internal/session"
	"github.com/minilibrary/library/internal/store"
	"github.com/minilibrary/library/internal/tui"
	"github.com/minilibrary/library/internal/tui/recentimports"
)

var (
	apiURL       string
	jsonOutput   bool
	configDir    string
	storeBackend string
	logLevel     string
)

// logOutput receives CLI logs; the TUI logs to debug.log instead
var logOutput io.Writer = os.Stderr

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "library",
	Short: "Terminal client for the library catalog",
	Long: `library is a terminal client for a small library catalog.

Run without a subcommand to open the interactive interface. Subcommands
cover scripting: log in, inspect the session and manage books.

Environment Variables:
  LIBRARY_API_URL        Backend API URL (default: ` + config.DefaultAPIURL + `)
  LIBRARY_CONFIG_DIR     Directory for the session token, config.yaml and debug.log
  LIBRARY_STORE          Token store backend: file or sqlite
  LIBRARY_LOG_LEVEL      debug, info, warn or error
  LIBRARY_LOG_FORMAT     text or json
  LIBRARY_STRICT_VERIFY  Log out when the session cannot be verified
  LIBRARY_TIMEOUT        Per-request timeout (e.g. 10s)`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return runTUI(ctx)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides LIBRARY_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (overrides LIBRARY_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "store", "", "Token store backend: file or sqlite")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// loadConfig resolves configuration with the global flags as overrides
func loadConfig() (*config.Config, error) {
	return config.Load(config.Overrides{
		APIURL:    apiURL,
		ConfigDir: configDir,
		Store:     storeBackend,
		LogLevel:  logLevel,
	})
}

// deps is everything a command needs to talk to the backend
type deps struct {
	cfg      *config.Config
	log      *slog.Logger
	tokens   store.TokenStore
	sessions *session.Store
	catalog  *catalog.Catalog
}

// newDeps wires client, token store, session store and catalog from cfg
func newDeps(cfg *config.Config, log *slog.Logger) (*deps, error) {
	tokens, err := store.Open(cfg.Store, cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	api := client.New(cfg.APIURL, client.WithTimeout(cfg.Timeout), client.WithLogger(log))
	sessions := session.New(api, tokens,
		session.WithStrictVerify(cfg.StrictVerify),
		session.WithLogger(log),
	)

	return &deps{
		cfg:      cfg,
		log:      log,
		tokens:   tokens,
		sessions: sessions,
		catalog:  catalog.New(api, sessions, log),
	}, nil
}

// cliDeps loads configuration and wires dependencies, logging to logOutput
func cliDeps() (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.Init(logOutput, cfg.LogLevel, cfg.LogFormat)
	return newDeps(cfg, log)
}

// Close releases the token store
func (d *deps) Close() {
	if c, ok := d.tokens.(io.Closer); ok {
		if err := c.Close(); err != nil {
			d.log.Warn("close token store", "error", err)
		}
	}
}

// runTUI opens the interactive interface on the restored session
func runTUI(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := logger.OpenDebugLog(cfg.ConfigDir)
	if err != nil {
		return err
	}
	defer f.Close()
	log := logger.Init(f, cfg.LogLevel, cfg.LogFormat)

	d, err := newDeps(cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.sessions.Restore(); err != nil {
		log.Warn("could not restore session", "error", err)
	}

	log.Info("starting TUI", "api_url", cfg.APIURL, "store", cfg.Store)
	return tui.Run(ctx, d.sessions, d.catalog, log,
		tui.WithRecentImports(recentimports.New(cfg.ConfigDir)),
	)
}
