// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"tradejournal/internal/models"
)

// addStrategyCommands adds strategy management commands.
func addStrategyCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Strategy management",
		Long:  "Define named strategies and review their performance with 'journal report strategies'.",
	}

	cmd.AddCommand(newStrategyAddCmd(app))
	cmd.AddCommand(newStrategyListCmd(app))
	cmd.AddCommand(newStrategyDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newStrategyAddCmd(app *App) *cobra.Command {
	var description, entry, exit, partial, breakEven string
	var minRR, maxRR float64

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Define a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			strategy := &models.Strategy{
				UserID:         app.UserID(),
				Name:           args[0],
				Description:    description,
				EntryCriteria:  entry,
				ExitCriteria:   exit,
				PartialRules:   partial,
				BreakEvenRules: breakEven,
				MinRiskReward:  minRR,
				MaxRiskReward:  maxRR,
			}
			if err := app.Store.SaveStrategy(ctx, strategy); err != nil {
				return err
			}

			output.Success("Strategy %q saved (%s)", strategy.Name, TruncateString(strategy.ID, 8))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "strategy description")
	cmd.Flags().StringVar(&entry, "entry", "", "entry criteria")
	cmd.Flags().StringVar(&exit, "exit", "", "exit criteria")
	cmd.Flags().StringVar(&partial, "partial", "", "partial profit rules")
	cmd.Flags().StringVar(&breakEven, "break-even", "", "break-even rules")
	cmd.Flags().Float64Var(&minRR, "min-rr", 0, "minimum risk:reward")
	cmd.Flags().Float64Var(&maxRR, "max-rr", 0, "maximum risk:reward")

	return cmd
}

func newStrategyListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			strategies, err := app.Store.GetStrategies(ctx, app.UserID())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(strategies)
			}
			if len(strategies) == 0 {
				output.Info("No strategies defined.")
				return nil
			}

			table := NewTable(output, "ID", "Name", "R:R Range", "Description")
			for _, s := range strategies {
				rr := "-"
				if s.MinRiskReward > 0 || s.MaxRiskReward > 0 {
					rr = FormatRiskReward(s.MinRiskReward)
					if s.MaxRiskReward > 0 {
						rr += " to " + FormatRiskReward(s.MaxRiskReward)
					}
				}
				table.AddRow(
					TruncateString(s.ID, 8),
					s.Name,
					rr,
					TruncateString(s.Description, 40),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newStrategyDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <strategy-id>",
		Short: "Delete a strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := app.Store.DeleteStrategy(ctx, args[0]); err != nil {
				return err
			}
			output.Success("Strategy %s deleted", args[0])
			return nil
		},
	}
}
