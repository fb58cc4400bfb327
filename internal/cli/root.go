// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradejournal/internal/broker"
	"tradejournal/internal/config"
	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/logging"
	"tradejournal/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-01-15"
)

// commandTimeout bounds every store and broker call issued by a command.
const commandTimeout = 30 * time.Second

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
	Broker *broker.Client
}

// UserID returns the configured journal owner.
func (a *App) UserID() string {
	return a.Config.Journal.UserID
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize SQLite store. A failure is not fatal here so that version,
	// config, and help still work; store commands surface the error instead.
	var storeErr error
	dataStore, err := store.NewSQLiteStore(cfg.Journal.DatabasePath)
	if err != nil {
		storeErr = apperrors.Wrapf(apperrors.ErrDatabaseError,
			"cannot open database at %s (%v)", cfg.Journal.DatabasePath, err)
		logger.Warn().Err(err).Msg("Failed to initialize store, store commands will fail")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Journal.DatabasePath).Msg("SQLite store initialized")
	}

	// Initialize broker client if the bridge is configured
	if cfg.HasBroker() {
		app.Broker = broker.NewClient(cfg.Broker.BridgeURL).
			WithCredentials(cfg.Credentials.CTrader.ClientID, cfg.Credentials.CTrader.ClientSecret)
		logger.Debug().Str("url", cfg.Broker.BridgeURL).Msg("cTrader bridge client initialized")
	}

	if !cfg.UI.ColorEnabled {
		DisableColors()
	}

	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trade Journal - personal trading journal CLI",
		Long: `Trade Journal is a personal trading journal for discretionary traders.

Record trades across multiple accounts, score setups against a weighted
confluence checklist, import and export CSV, and review performance with
win-rate, profit-factor, and drawdown reports.

Use 'journal help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			if app.Store == nil && commandNeedsStore(cmd) {
				return storeErr
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradejournal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addAccountCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addCSVCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addConfluenceCommands(rootCmd, app)
	addStrategyCommands(rootCmd, app)
	addNoteCommands(rootCmd, app)
	addBrokerCommands(rootCmd, app)

	return rootCmd
}

// commandNeedsStore reports whether a command reads or writes the store.
// Version, config, help, and completion stay usable when the database
// cannot be opened.
func commandNeedsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "config", "help", "completion", "__complete":
			return false
		}
	}
	return true
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Trade Journal v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"database_path":   app.Config.Journal.DatabasePath,
					"user_id":         app.Config.Journal.UserID,
					"default_account": app.Config.Journal.DefaultAccountID,
					"bridge_url":      app.Config.Broker.BridgeURL,
				})
			}

			output.Bold("Journal")
			output.Printf("  Database:        %s\n", app.Config.Journal.DatabasePath)
			output.Printf("  User:            %s\n", app.Config.Journal.UserID)
			output.Printf("  Default account: %s\n", orDash(app.Config.Journal.DefaultAccountID))
			output.Println()
			output.Bold("Broker")
			if app.Config.HasBroker() {
				output.Printf("  Bridge URL: %s\n", app.Config.Broker.BridgeURL)
			} else {
				output.Dim("  Not configured")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create starter configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			configDir, _ := cmd.Flags().GetString("config")
			path, err := config.CreateTemplateCredentials(configDir)
			if err != nil {
				return err
			}
			output.Success("Credentials template ready at %s", path)
			return nil
		},
	})

	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
