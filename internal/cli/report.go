// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/metrics"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

// addReportCommands adds analytics and report commands.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Performance reports",
		Long:  "Win-rate, profit-factor, drawdown, and breakdown reports over closed trades.",
	}

	cmd.AddCommand(newReportSummaryCmd(app))
	cmd.AddCommand(newReportSymbolsCmd(app))
	cmd.AddCommand(newReportStrategiesCmd(app))
	cmd.AddCommand(newReportCalendarCmd(app))
	cmd.AddCommand(newReportEquityCmd(app))

	rootCmd.AddCommand(cmd)
}

func newReportSummaryCmd(app *App) *cobra.Command {
	var accountID, period string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Overall performance summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			filter := store.TradeFilter{UserID: app.UserID(), AccountID: accountID}
			if period != "" {
				filter.StartDate = metrics.PeriodStart(period, time.Now())
			}

			trades, err := app.Store.GetTrades(ctx, filter)
			if err != nil {
				return err
			}

			summary := metrics.Compute(trades)
			currency := reportCurrency(ctx, app, accountID)

			if output.IsJSON() {
				return output.JSON(summary)
			}

			title := "Performance Summary"
			if period != "" {
				title += " (" + period + ")"
			}
			output.Bold(title)
			output.Printf("  Trades:        %d total, %d closed, %d open\n",
				summary.TotalTrades, summary.ClosedTrades, summary.OpenTrades)
			output.Printf("  Win rate:      %s (%d wins / %d losses)\n",
				FormatWinRate(summary.WinRate), summary.Wins, summary.Losses)
			output.Printf("  Net P&L:       %s\n", output.FormatPnL(summary.NetPnL, currency))
			output.Printf("  Gross P/L:     %s / %s\n",
				FormatMoney(summary.GrossProfit, currency),
				FormatMoney(summary.GrossLoss, currency))
			output.Printf("  Profit factor: %s\n", FormatProfitFactor(summary.ProfitFactor))
			output.Printf("  Avg win/loss:  %s / %s\n",
				FormatMoney(summary.AverageWin, currency),
				FormatMoney(math.Abs(summary.AverageLoss), currency))
			output.Printf("  Best/worst:    %s / %s\n",
				output.FormatPnL(summary.BestTrade, currency),
				output.FormatPnL(summary.WorstTrade, currency))
			output.Printf("  Expectancy:    %s\n", FormatMoney(summary.Expectancy, currency))
			output.Printf("  Max drawdown:  %s\n", FormatMoney(summary.MaxDrawdown, currency))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "filter by account id")
	cmd.Flags().StringVar(&period, "period", "", "report period: daily, weekly, or monthly")

	return cmd
}

func newReportSymbolsCmd(app *App) *cobra.Command {
	return newBreakdownCmd(app, "symbols", "Per-symbol breakdown", metrics.BySymbol)
}

func newReportStrategiesCmd(app *App) *cobra.Command {
	return newBreakdownCmd(app, "strategies", "Per-strategy breakdown", metrics.ByStrategy)
}

func newBreakdownCmd(app *App, use, short string, group func([]models.Trade) []metrics.GroupStat) *cobra.Command {
	var accountID, period string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			filter := store.TradeFilter{UserID: app.UserID(), AccountID: accountID}
			if period != "" {
				filter.StartDate = metrics.PeriodStart(period, time.Now())
			}

			trades, err := app.Store.GetTrades(ctx, filter)
			if err != nil {
				return err
			}

			stats := group(trades)
			currency := reportCurrency(ctx, app, accountID)

			if output.IsJSON() {
				return output.JSON(stats)
			}
			if len(stats) == 0 {
				output.Info("No closed trades to report.")
				return nil
			}

			table := NewTable(output, "Name", "Trades", "Win Rate", "Net P&L")
			for _, s := range stats {
				table.AddRow(
					s.Key,
					intString(s.Trades),
					FormatWinRate(s.WinRate),
					output.FormatPnL(s.PnL, currency),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "filter by account id")
	cmd.Flags().StringVar(&period, "period", "", "report period: daily, weekly, or monthly")

	return cmd
}

func newReportCalendarCmd(app *App) *cobra.Command {
	var accountID, month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Calendar of daily results",
		Long:  "Show each trading day of a month with its trade count and net P&L.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			now := time.Now()
			start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
			if month != "" {
				parsed, err := time.Parse("2006-01", month)
				if err != nil {
					return err
				}
				start = parsed
			}
			end := start.AddDate(0, 1, 0)

			trades, err := app.Store.GetTrades(ctx, store.TradeFilter{
				UserID:    app.UserID(),
				AccountID: accountID,
				StartDate: start,
				EndDate:   end,
			})
			if err != nil {
				return err
			}

			days := metrics.ByDay(trades)
			currency := reportCurrency(ctx, app, accountID)

			if output.IsJSON() {
				return output.JSON(days)
			}
			if len(days) == 0 {
				output.Info("No closed trades in %s.", start.Format("January 2006"))
				return nil
			}

			output.Bold("Calendar - %s", start.Format("January 2006"))
			var monthPnL float64
			table := NewTable(output, "Day", "Trades", "Net P&L")
			for _, d := range days {
				monthPnL += d.PnL
				table.AddRow(
					d.Day.Format("Mon 02"),
					intString(d.Trades),
					output.FormatPnL(d.PnL, currency),
				)
			}
			table.Render()
			output.Printf("  Month total: %s\n", output.FormatPnL(monthPnL, currency))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "filter by account id")
	cmd.Flags().StringVar(&month, "month", "", "month to show (YYYY-MM, default current)")

	return cmd
}

func newReportEquityCmd(app *App) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "equity",
		Short: "Equity curve for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			account, err := resolveAccount(ctx, app, accountID)
			if err != nil {
				return err
			}

			trades, err := app.Store.GetTrades(ctx, store.TradeFilter{AccountID: account.ID})
			if err != nil {
				return err
			}

			curve := metrics.EquityCurve(account.InitialBalance, metrics.SortByCloseTime(trades))
			if output.IsJSON() {
				return output.JSON(curve)
			}
			if len(curve) == 0 {
				output.Info("No closed trades yet; equity is the initial balance %s.",
					FormatMoney(account.InitialBalance, account.Currency))
				return nil
			}

			table := NewTable(output, "Date", "Equity")
			for _, p := range curve {
				table.AddRow(FormatDate(p.Time), FormatMoney(p.Equity, account.Currency))
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (default from config)")

	return cmd
}

// reportCurrency picks a display currency: the filtered account's currency
// when one account is in scope, otherwise none. Mixed-currency aggregation
// is left to the user.
func reportCurrency(ctx context.Context, app *App, accountID string) string {
	if accountID == "" {
		return ""
	}
	account, err := app.Store.GetAccountByID(ctx, accountID)
	if err != nil {
		return ""
	}
	return account.Currency
}

func intString(n int) string {
	return strconv.Itoa(n)
}
