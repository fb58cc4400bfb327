// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/logging"
	"tradejournal/internal/metrics"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

// addTradeCommands adds trade lifecycle commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Trade management",
		Long:  "Record, close, and review trades.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeCloseCmd(app))
	cmd.AddCommand(newTradePartialCloseCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	var (
		accountID, tradeType, entryDate, strategyID, notes, emotions string
		quantity, stopLoss, takeProfit, riskAmount                   float64
		commission, swap                                             float64
		screenshots                                                  []string
	)

	cmd := &cobra.Command{
		Use:   "add <symbol> <entry-price>",
		Short: "Record a new trade",
		Long:  "Record a new open trade. Risk:reward is derived from stop loss and take profit when both are given.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			entryPrice, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid entry price %q", args[1])
			}
			if quantity <= 0 {
				return fmt.Errorf("quantity must be positive")
			}
			if len(screenshots) > models.MaxScreenshots {
				return fmt.Errorf("at most %d screenshots per trade", models.MaxScreenshots)
			}

			account, err := resolveAccount(ctx, app, accountID)
			if err != nil {
				return err
			}

			when := time.Now()
			if entryDate != "" {
				when, err = parseDate(entryDate)
				if err != nil {
					return err
				}
			}

			trade := &models.Trade{
				UserID:      app.UserID(),
				AccountID:   account.ID,
				Symbol:      args[0],
				Type:        models.NormalizeTradeType(tradeType),
				EntryPrice:  entryPrice,
				Quantity:    quantity,
				EntryDate:   when,
				Commission:  commission,
				Swap:        swap,
				Notes:       notes,
				Emotions:    emotions,
				Screenshots: screenshots,
				StrategyID:  strategyID,
			}
			if stopLoss > 0 {
				trade.StopLoss = models.Float64Ptr(stopLoss)
			}
			if takeProfit > 0 {
				trade.TakeProfit = models.Float64Ptr(takeProfit)
			}
			if riskAmount > 0 {
				trade.RiskAmount = models.Float64Ptr(riskAmount)
			}
			if stopLoss > 0 && takeProfit > 0 {
				if rr := metrics.RiskRewardRatio(entryPrice, stopLoss, takeProfit); rr != 0 {
					trade.RiskReward = models.Float64Ptr(rr)
				}
			}
			trade.InferStatus()

			if err := app.Store.SaveTrade(ctx, trade); err != nil {
				return err
			}

			logging.LogTrade(app.Logger, "trade_opened", trade.ID, trade.Symbol, quantity)
			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("Trade recorded (%s)", TruncateString(trade.ID, 8))
			output.Printf("  %s %s %s @ %s\n", trade.Symbol, trade.Type,
				FormatQuantity(quantity), FormatPrice(entryPrice))
			if trade.RiskReward != nil {
				output.Printf("  Risk:reward %s\n", FormatRiskReward(*trade.RiskReward))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "account id (default from config)")
	cmd.Flags().StringVar(&tradeType, "type", "long", "trade direction: long/buy or short/sell")
	cmd.Flags().Float64Var(&quantity, "qty", 0, "position size")
	cmd.Flags().StringVar(&entryDate, "date", "", "entry date (YYYY-MM-DD, default now)")
	cmd.Flags().Float64Var(&stopLoss, "sl", 0, "stop loss price")
	cmd.Flags().Float64Var(&takeProfit, "tp", 0, "take profit price")
	cmd.Flags().Float64Var(&riskAmount, "risk", 0, "risk amount")
	cmd.Flags().Float64Var(&commission, "commission", 0, "commission paid")
	cmd.Flags().Float64Var(&swap, "swap", 0, "swap/financing cost")
	cmd.Flags().StringVar(&strategyID, "strategy", "", "strategy id")
	cmd.Flags().StringVar(&notes, "notes", "", "trade notes")
	cmd.Flags().StringVar(&emotions, "emotions", "", "emotional state")
	cmd.Flags().StringSliceVar(&screenshots, "screenshot", nil, "screenshot URL (repeatable, max 5)")
	cmd.MarkFlagRequired("qty")

	return cmd
}

func newTradeCloseCmd(app *App) *cobra.Command {
	var exitDate string
	var pnlOverride float64
	var pnlSet bool

	cmd := &cobra.Command{
		Use:   "close <trade-id> <exit-price>",
		Short: "Close an open trade",
		Long:  "Close an open trade. P&L is computed from entry, exit, size, and costs unless --pnl overrides it.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			pnlSet = cmd.Flags().Changed("pnl")

			exitPrice, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid exit price %q", args[1])
			}

			trade, err := app.Store.GetTradeByID(ctx, args[0])
			if err != nil {
				return err
			}

			when := time.Now()
			if exitDate != "" {
				when, err = parseDate(exitDate)
				if err != nil {
					return err
				}
			}

			pnl := metrics.AutoPnL(trade.EntryPrice, exitPrice, trade.Quantity,
				trade.Type, trade.Commission, trade.Swap)
			if pnlSet {
				if metrics.ShouldReplacePnL(pnlOverride, pnl) {
					output.Warning("Provided P&L %.2f differs from computed %.2f; using provided value",
						pnlOverride, pnl)
				}
				pnl = pnlOverride
			}

			if err := app.Store.CloseTrade(ctx, trade.ID, exitPrice, when, pnl); err != nil {
				return err
			}

			account, err := app.Store.GetAccountByID(ctx, trade.AccountID)
			if err != nil {
				return err
			}

			logging.LogTrade(app.Logger, "trade_closed", trade.ID, trade.Symbol, trade.Quantity)
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"trade_id":   trade.ID,
					"exit_price": exitPrice,
					"pnl":        pnl,
				})
			}
			output.Success("Trade %s closed", TruncateString(trade.ID, 8))
			output.Printf("  %s @ %s, P&L %s\n", trade.Symbol, FormatPrice(exitPrice),
				output.FormatPnL(pnl, account.Currency))
			return nil
		},
	}

	cmd.Flags().StringVar(&exitDate, "date", "", "exit date (YYYY-MM-DD, default now)")
	cmd.Flags().Float64Var(&pnlOverride, "pnl", 0, "override computed P&L")

	return cmd
}

func newTradePartialCloseCmd(app *App) *cobra.Command {
	var exitDate string

	cmd := &cobra.Command{
		Use:   "partial-close <trade-id> <qty> <exit-price>",
		Short: "Close part of an open position",
		Long: `Close part of an open position. A new closed trade record takes the
given quantity and exit price; the original stays open with the remainder.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			ctx = logging.WithLogger(ctx, app.Logger)

			closeQty, err := parsePositiveFloat(args[1], "quantity")
			if err != nil {
				return err
			}
			exitPrice, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid exit price %q", args[2])
			}

			trade, err := app.Store.GetTradeByID(ctx, args[0])
			if err != nil {
				return err
			}
			if closeQty >= trade.Quantity {
				return fmt.Errorf("partial quantity %s must be less than position size %s; use 'trade close' to close fully",
					FormatQuantity(closeQty), FormatQuantity(trade.Quantity))
			}

			when := time.Now()
			if exitDate != "" {
				when, err = parseDate(exitDate)
				if err != nil {
					return err
				}
			}

			// Costs stay with the open remainder; the closed slice carries
			// only price P&L.
			pnl := metrics.AutoPnL(trade.EntryPrice, exitPrice, closeQty, trade.Type, 0, 0)

			closedID, err := app.Store.PartialCloseTrade(ctx, trade.ID, closeQty, exitPrice, when, pnl)
			if err != nil {
				return err
			}

			account, err := app.Store.GetAccountByID(ctx, trade.AccountID)
			if err != nil {
				return err
			}

			logging.LogTrade(app.Logger, "trade_partial_closed", trade.ID, trade.Symbol, closeQty)
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"closed_trade_id": closedID,
					"remaining_qty":   trade.Quantity - closeQty,
					"pnl":             pnl,
				})
			}
			output.Success("Closed %s of %s %s", FormatQuantity(closeQty),
				FormatQuantity(trade.Quantity), trade.Symbol)
			output.Printf("  P&L %s, %s still open\n",
				output.FormatPnL(pnl, account.Currency),
				FormatQuantity(trade.Quantity-closeQty))
			return nil
		},
	}

	cmd.Flags().StringVar(&exitDate, "date", "", "exit date (YYYY-MM-DD, default now)")

	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	var accountID, symbol, status, strategyID, from, to string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			filter := store.TradeFilter{
				UserID:     app.UserID(),
				AccountID:  accountID,
				Symbol:     symbol,
				Status:     models.TradeStatus(status),
				StrategyID: strategyID,
				Limit:      limit,
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
				filter.EndDate = end.Add(24*time.Hour - time.Nanosecond)
			}

			trades, err := app.Store.GetTrades(ctx, filter)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Symbol", "Type", "Qty", "Entry", "Exit", "P&L", "Status")
			for _, t := range trades {
				exit := "-"
				if t.ExitPrice != nil {
					exit = FormatPrice(*t.ExitPrice)
				}
				pnl := "-"
				if t.PnL != nil {
					pnl = output.FormatPnL(*t.PnL, "")
				}
				table.AddRow(
					TruncateString(t.ID, 8),
					FormatDate(t.EntryDate),
					t.Symbol,
					string(t.Type),
					FormatQuantity(t.Quantity),
					FormatPrice(t.EntryPrice),
					exit,
					pnl,
					string(t.Status),
				)
			}
			table.Render()
			output.Dim("%d trade(s)", len(trades))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "filter by account id")
	cmd.Flags().StringVar(&symbol, "symbol", "", "filter by symbol")
	cmd.Flags().StringVar(&status, "status", "", "filter by status: open or closed")
	cmd.Flags().StringVar(&strategyID, "strategy", "", "filter by strategy id")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")

	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show trade details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			trade, err := app.Store.GetTradeByID(ctx, args[0])
			if err != nil {
				return err
			}
			account, err := app.Store.GetAccountByID(ctx, trade.AccountID)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}

			output.Bold("%s %s (%s)", trade.Symbol, trade.Type, TruncateString(trade.ID, 8))
			output.Printf("  Account:  %s\n", account.Name)
			output.Printf("  Status:   %s\n", trade.Status)
			output.Printf("  Entry:    %s @ %s on %s\n", FormatQuantity(trade.Quantity),
				FormatPrice(trade.EntryPrice), FormatDate(trade.EntryDate))
			if trade.ExitPrice != nil {
				exitDate := "-"
				if trade.ExitDate != nil {
					exitDate = FormatDate(*trade.ExitDate)
				}
				output.Printf("  Exit:     %s on %s\n", FormatPrice(*trade.ExitPrice), exitDate)
			}
			if trade.StopLoss != nil {
				output.Printf("  Stop:     %s\n", FormatPrice(*trade.StopLoss))
			}
			if trade.TakeProfit != nil {
				output.Printf("  Target:   %s\n", FormatPrice(*trade.TakeProfit))
			}
			if trade.RiskReward != nil {
				output.Printf("  R:R:      %s\n", FormatRiskReward(*trade.RiskReward))
			}
			if trade.PnL != nil {
				output.Printf("  P&L:      %s\n", output.FormatPnL(*trade.PnL, account.Currency))
			}
			if trade.Commission != 0 || trade.Swap != 0 {
				output.Printf("  Costs:    commission %s, swap %s\n",
					FormatMoney(trade.Commission, account.Currency),
					FormatMoney(trade.Swap, account.Currency))
			}
			if trade.StrategyID != "" {
				output.Printf("  Strategy: %s\n", trade.StrategyID)
			}
			if trade.Notes != "" {
				output.Printf("  Notes:    %s\n", trade.Notes)
			}
			if trade.Emotions != "" {
				output.Printf("  Emotions: %s\n", trade.Emotions)
			}
			for _, s := range trade.Screenshots {
				output.Dim("  Screenshot: %s", s)
			}

			// Confluence selections, if the trade was scored.
			selections, err := app.Store.GetTradeConfluence(ctx, trade.ID)
			if err == nil && len(selections) > 0 {
				output.Println()
				output.Bold("Confluence")
				items, err := app.Store.GetConfluenceItems(ctx, store.ConfluenceFilter{UserID: app.UserID()})
				if err == nil {
					byID := make(map[string]models.ConfluenceItem, len(items))
					for _, item := range items {
						byID[item.ID] = item
					}
					for _, sel := range selections {
						item, ok := byID[sel.ConfluenceItemID]
						if !ok {
							continue
						}
						mark := output.DimText("✗")
						if sel.Present {
							mark = output.Green("✓")
						}
						output.Printf("  %s %s (%.1f)\n", mark, item.Name, item.Weight)
					}
				}
			}
			return nil
		},
	}
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := app.Store.DeleteTrade(ctx, args[0]); err != nil {
				return err
			}
			logger := logging.WithTrade(app.Logger, args[0])
			logger.Info().Str("event", "trade_deleted").Msg("Trade deleted")
			output.Success("Trade %s deleted", args[0])
			return nil
		},
	}
}

// resolveAccount resolves an explicit account id, falls back to the
// configured default, and rejects inactive accounts for new activity.
func resolveAccount(ctx context.Context, app *App, accountID string) (*models.TradingAccount, error) {
	if accountID == "" {
		accountID = app.Config.Journal.DefaultAccountID
	}
	if accountID == "" {
		accounts, err := app.Store.GetAccounts(ctx, store.AccountFilter{
			UserID:     app.UserID(),
			ActiveOnly: true,
		})
		if err != nil {
			return nil, err
		}
		if len(accounts) == 1 {
			return &accounts[0], nil
		}
		return nil, fmt.Errorf("no account specified: pass --account or set default_account in config")
	}

	account, err := app.Store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.Wrapf(apperrors.ErrAccountInactive, "account %q", account.Name)
	}
	return account, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}
