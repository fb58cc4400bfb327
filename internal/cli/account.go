// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/logging"
	"tradejournal/internal/metrics"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

// addAccountCommands adds trading account commands.
func addAccountCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Trading account management",
		Long:  "Create and manage trading accounts, deposits, and withdrawals.",
	}

	cmd.AddCommand(newAccountAddCmd(app))
	cmd.AddCommand(newAccountListCmd(app))
	cmd.AddCommand(newAccountShowCmd(app))
	cmd.AddCommand(newAccountDeactivateCmd(app))
	cmd.AddCommand(newAccountActivateCmd(app))
	cmd.AddCommand(newAccountDeleteCmd(app))
	cmd.AddCommand(newAccountDepositCmd(app))
	cmd.AddCommand(newAccountWithdrawCmd(app))

	rootCmd.AddCommand(cmd)
}

func newAccountAddCmd(app *App) *cobra.Command {
	var broker, currency string
	var balance, goal float64

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a trading account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			account := &models.TradingAccount{
				UserID:         app.UserID(),
				Name:           args[0],
				Broker:         broker,
				InitialBalance: balance,
				CurrentBalance: balance,
				Currency:       currency,
				IsActive:       true,
			}
			if goal > 0 {
				account.EquityGoal = models.Float64Ptr(goal)
			}

			if err := app.Store.SaveAccount(ctx, account); err != nil {
				return err
			}

			app.Logger.Info().Str("account", account.ID).Str("name", account.Name).Msg("account created")
			if output.IsJSON() {
				return output.JSON(account)
			}
			output.Success("Account %q created (%s)", account.Name, account.ID)
			output.Printf("  Starting balance: %s\n", FormatMoney(balance, currency))
			return nil
		},
	}

	cmd.Flags().StringVar(&broker, "broker", "", "broker name")
	cmd.Flags().StringVar(&currency, "currency", "USD", "account currency")
	cmd.Flags().Float64Var(&balance, "balance", 0, "initial balance")
	cmd.Flags().Float64Var(&goal, "goal", 0, "equity goal")

	return cmd
}

func newAccountListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trading accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			accounts, err := app.Store.GetAccounts(ctx, store.AccountFilter{
				UserID:     app.UserID(),
				ActiveOnly: !all,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(accounts)
			}
			if len(accounts) == 0 {
				output.Info("No accounts found. Create one with 'journal account add'.")
				return nil
			}

			table := NewTable(output, "ID", "Name", "Broker", "Balance", "Currency", "Active")
			for _, a := range accounts {
				equity, err := accountEquity(ctx, app, &a)
				if err != nil {
					return err
				}
				active := "yes"
				if !a.IsActive {
					active = output.DimText("no")
				}
				table.AddRow(
					TruncateString(a.ID, 8),
					a.Name,
					orDash(a.Broker),
					FormatMoney(equity, a.Currency),
					a.Currency,
					active,
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include deactivated accounts")

	return cmd
}

func newAccountShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show account equity and activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			account, err := app.Store.GetAccountByID(ctx, args[0])
			if err != nil {
				return err
			}

			trades, err := app.Store.GetTrades(ctx, store.TradeFilter{AccountID: account.ID})
			if err != nil {
				return err
			}
			txs, err := app.Store.GetTransactions(ctx, account.ID)
			if err != nil {
				return err
			}

			equity := metrics.Equity(account.InitialBalance, trades, txs)
			closed := metrics.ClosedOnly(trades)
			open := metrics.OpenCount(trades)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"account":      account,
					"equity":       equity,
					"closed_count": len(closed),
					"open_count":   open,
				})
			}

			output.Bold("%s (%s)", account.Name, TruncateString(account.ID, 8))
			output.Printf("  Broker:          %s\n", orDash(account.Broker))
			output.Printf("  Initial balance: %s\n", FormatMoney(account.InitialBalance, account.Currency))
			output.Printf("  Equity:          %s\n", FormatMoney(equity, account.Currency))
			if account.EquityGoal != nil {
				progress := 0.0
				if *account.EquityGoal != 0 {
					progress = equity / *account.EquityGoal * 100
				}
				output.Printf("  Equity goal:     %s (%.1f%%)\n",
					FormatMoney(*account.EquityGoal, account.Currency), progress)
			}
			output.Printf("  Trades:          %d closed, %d open\n", len(closed), open)
			output.Printf("  Transactions:    %d\n", len(txs))
			if !account.IsActive {
				output.Warning("  Account is deactivated")
			}
			return nil
		},
	}
}

func newAccountDeactivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <account-id>",
		Short: "Deactivate an account (history is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := app.Store.SetAccountActive(ctx, args[0], false); err != nil {
				return err
			}
			output.Success("Account %s deactivated", args[0])
			return nil
		},
	}
}

func newAccountActivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <account-id>",
		Short: "Reactivate an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := app.Store.SetAccountActive(ctx, args[0], true); err != nil {
				return err
			}
			output.Success("Account %s activated", args[0])
			return nil
		},
	}
}

func newAccountDeleteCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <account-id>",
		Short: "Delete an account with all its trades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if !force {
				output.Warning("This permanently deletes the account, its trades, and its ledger.")
				output.Printf("Re-run with --force to confirm.\n")
				return nil
			}

			ctx = logging.WithLogger(ctx, app.Logger)
			if err := app.Store.DeleteAccount(ctx, args[0]); err != nil {
				return err
			}
			app.Logger.Info().Str("account", args[0]).Msg("account deleted")
			output.Success("Account %s deleted", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation")

	return cmd
}

func newAccountDepositCmd(app *App) *cobra.Command {
	return newTransactionCmd(app, models.TransactionDeposit, "deposit", "Record a deposit")
}

func newAccountWithdrawCmd(app *App) *cobra.Command {
	return newTransactionCmd(app, models.TransactionWithdrawal, "withdraw", "Record a withdrawal")
}

func newTransactionCmd(app *App, txType models.TransactionType, use, short string) *cobra.Command {
	var note, date string

	cmd := &cobra.Command{
		Use:   use + " <account-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			amount, err := parsePositiveFloat(args[1], "amount")
			if err != nil {
				return err
			}

			account, err := app.Store.GetAccountByID(ctx, args[0])
			if err != nil {
				return err
			}

			when := time.Now()
			if date != "" {
				when, err = time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", date, err)
				}
			}

			tx := &models.Transaction{
				UserID:    app.UserID(),
				AccountID: account.ID,
				Type:      txType,
				Amount:    amount,
				Note:      note,
				Date:      when,
			}
			if err := app.Store.SaveTransaction(ctx, tx); err != nil {
				return err
			}
			logger := logging.WithAccount(app.Logger, account.ID)
			logger.Info().
				Str("event", "transaction").
				Str("type", string(txType)).
				Float64("amount", amount).
				Msg("Transaction recorded")

			equity, err := accountEquity(ctx, app, account)
			if err != nil {
				return err
			}
			output.Success("%s of %s recorded", short, FormatMoney(amount, account.Currency))
			output.Printf("  New equity: %s\n", FormatMoney(equity, account.Currency))
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "transaction note")
	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD, default today)")

	return cmd
}

// accountEquity recomputes account equity: initial balance plus closed
// trade P&L plus deposits minus withdrawals.
func accountEquity(ctx context.Context, app *App, account *models.TradingAccount) (float64, error) {
	trades, err := app.Store.GetTrades(ctx, store.TradeFilter{AccountID: account.ID})
	if err != nil {
		return 0, err
	}
	txs, err := app.Store.GetTransactions(ctx, account.ID)
	if err != nil {
		return 0, err
	}
	return metrics.Equity(account.InitialBalance, trades, txs), nil
}

func parsePositiveFloat(s, name string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return v, nil
}
