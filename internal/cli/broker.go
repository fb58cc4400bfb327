// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/broker"
	"tradejournal/internal/errors"
	"tradejournal/internal/logging"
	"tradejournal/internal/models"
)

// addBrokerCommands adds cTrader broker integration commands.
func addBrokerCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "broker",
		Short: "cTrader broker integration",
		Long: `Connect a cTrader account and pull its deal history into the journal.
Requires bridge_url in the [broker] config section.`,
	}

	cmd.AddCommand(newBrokerConnectCmd(app))
	cmd.AddCommand(newBrokerImportCmd(app))
	cmd.AddCommand(newBrokerSyncCmd(app))

	rootCmd.AddCommand(cmd)
}

// requireBroker fails fast when the bridge is not configured.
func requireBroker(app *App) error {
	if app.Broker == nil {
		return errors.ErrBrokerNotConnected
	}
	return nil
}

func newBrokerConnectCmd(app *App) *cobra.Command {
	var accountID, newName, currency string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Start cTrader account authorization",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireBroker(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			var account *models.TradingAccount
			var err error
			if newName != "" {
				// Zero-balance shell; the first sync fills in history.
				account = &models.TradingAccount{
					UserID:   app.UserID(),
					Name:     newName,
					Broker:   "ctrader",
					Currency: currency,
					IsActive: true,
				}
				if err = app.Store.SaveAccount(ctx, account); err != nil {
					return err
				}
				output.Info("Created account %q (%s)", account.Name, account.ID)
			} else {
				account, err = resolveAccount(ctx, app, accountID)
				if err != nil {
					return err
				}
			}

			auth, err := app.Broker.InitiateAuth(ctx, app.UserID(), account.ID)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(auth)
			}
			output.Bold("Authorize cTrader access")
			output.Printf("  Open this URL in your browser:\n\n  %s\n\n", auth.AuthURL)
			output.Dim("After approving, run 'journal broker sync' to pull your history.")
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "journal account to link (default from config)")
	cmd.Flags().StringVar(&newName, "new", "", "create a fresh zero-balance account with this name")
	cmd.Flags().StringVar(&currency, "currency", "USD", "currency for a newly created account")

	return cmd
}

func newBrokerImportCmd(app *App) *cobra.Command {
	var accountID, from, to string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import closed deals for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireBroker(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			account, err := resolveAccount(ctx, app, accountID)
			if err != nil {
				return err
			}

			end := time.Now()
			start := end.AddDate(0, -1, 0)
			if from != "" {
				start, err = parseDate(from)
				if err != nil {
					return err
				}
			}
			if to != "" {
				end, err = parseDate(to)
				if err != nil {
					return err
				}
			}

			began := time.Now()
			result, err := app.Broker.ImportTrades(ctx, app.UserID(), account.ID, start, end)
			logging.LogSync(app.Logger, account.ID, resultCount(result), time.Since(began), err)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			output.Success("Imported %d deal(s) into %s", result.Imported, account.Name)
			if result.Skipped > 0 {
				output.Dim("%d already present, skipped", result.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "journal account (default from config)")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD, default one month ago)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD, default today)")

	return cmd
}

func newBrokerSyncCmd(app *App) *cobra.Command {
	var accountID string
	var full bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync new deals since the last sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := requireBroker(app); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			account, err := resolveAccount(ctx, app, accountID)
			if err != nil {
				return err
			}

			began := time.Now()
			result, err := app.Broker.Sync(ctx, app.UserID(), account.ID, full)
			logging.LogSync(app.Logger, account.ID, resultCount(result), time.Since(began), err)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			if result.Imported == 0 {
				output.Info("Already up to date.")
			} else {
				output.Success("Synced %d new deal(s) into %s", result.Imported, account.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "journal account (default from config)")
	cmd.Flags().BoolVar(&full, "full", false, "re-read the whole account history")

	return cmd
}

func resultCount(result *broker.ImportResult) int {
	if result == nil {
		return 0
	}
	return result.Imported
}
