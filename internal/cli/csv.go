// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"tradejournal/internal/csvio"
	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/logging"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

// addCSVCommands adds CSV import/export commands.
func addCSVCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "CSV import and export",
		Long:  "Exchange trades with spreadsheets and other journals as CSV.",
	}

	cmd.AddCommand(newCSVImportCmd(app))
	cmd.AddCommand(newCSVExportCmd(app))

	rootCmd.AddCommand(cmd)
}

func newCSVImportCmd(app *App) *cobra.Command {
	var accountID string
	var dryRun, yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import trades from a CSV file",
		Long: `Import trades from a CSV file. Column headers are matched loosely,
so exports from most platforms work without editing. Required columns:
Symbol, Trade Type, Entry Price, Quantity, Entry Date.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			preview, err := csvio.Import(data)
			if err != nil {
				var parseErr *apperrors.ParseError
				if apperrors.As(err, &parseErr) && len(parseErr.MissingColumns) > 0 {
					output.Dim("Headers are matched loosely; required: Symbol, Trade Type, Entry Price, Quantity, Entry Date")
				}
				return err
			}

			account, err := resolveAccount(ctx, app, accountID)
			if err != nil {
				return err
			}

			if output.IsJSON() && dryRun {
				return output.JSON(preview)
			}

			output.Bold("Parsed %d trade(s) from %s", len(preview.Trades), args[0])
			for _, w := range preview.Warnings {
				output.Warning("  %s", w)
			}

			if dryRun {
				table := NewTable(output, "Symbol", "Type", "Qty", "Entry", "Exit", "P&L", "Status")
				for _, t := range preview.Trades {
					exit, pnl := "-", "-"
					if t.ExitPrice != nil {
						exit = FormatPrice(*t.ExitPrice)
					}
					if t.PnL != nil {
						pnl = output.FormatPnL(*t.PnL, "")
					}
					table.AddRow(t.Symbol, string(t.Type), FormatQuantity(t.Quantity),
						FormatPrice(t.EntryPrice), exit, pnl, string(t.Status))
				}
				table.Render()
				output.Dim("Dry run: nothing was saved.")
				return nil
			}

			if len(preview.Warnings) > 0 && !yes {
				output.Printf("Re-run with --yes to import despite warnings, or --dry-run to inspect.\n")
				return nil
			}

			saved := 0
			for i := range preview.Trades {
				trade := preview.Trades[i]
				trade.UserID = app.UserID()
				trade.AccountID = account.ID
				if err := app.Store.SaveTrade(ctx, &trade); err != nil {
					return err
				}
				saved++
			}

			logging.LogImport(app.Logger, args[0], saved, len(preview.Warnings))
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"imported": saved,
					"warnings": preview.Warnings,
				})
			}
			output.Success("Imported %d trade(s) into %s", saved, account.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "target account id (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and preview without saving")
	cmd.Flags().BoolVar(&yes, "yes", false, "import even when rows carry warnings")

	return cmd
}

func newCSVExportCmd(app *App) *cobra.Command {
	var accountID, symbol, status, from, to, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			filter := store.TradeFilter{
				UserID:    app.UserID(),
				AccountID: accountID,
				Symbol:    symbol,
			}
			if status != "" {
				filter.Status = models.TradeStatus(status)
			}
			if from != "" {
				start, err := parseDate(from)
				if err != nil {
					return err
				}
				filter.StartDate = start
			}
			if to != "" {
				end, err := parseDate(to)
				if err != nil {
					return err
				}
				filter.EndDate = end
			}

			trades, err := app.Store.GetTrades(ctx, filter)
			if err != nil {
				return err
			}

			data, err := csvio.Export(trades)
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				output.Printf("%s", data)
				return nil
			}
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return err
			}
			output.Success("Exported %d trade(s) to %s", len(trades), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "filter by account id")
	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	cmd.Flags().StringVar(&status, "status", "", "filter by status: open or closed")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	return cmd
}
