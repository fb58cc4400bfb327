// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"tradejournal/internal/confluence"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

// addConfluenceCommands adds confluence checklist commands.
func addConfluenceCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "confluence",
		Short: "Weighted confluence checklist",
		Long: `Manage the weighted checklist scored before entering a trade.
A setup clears the entry gate when checked weights sum to at least 5.0.`,
	}

	cmd.AddCommand(newConfluenceAddCmd(app))
	cmd.AddCommand(newConfluenceListCmd(app))
	cmd.AddCommand(newConfluenceDeleteCmd(app))
	cmd.AddCommand(newConfluenceCheckCmd(app))

	rootCmd.AddCommand(cmd)
}

func newConfluenceAddCmd(app *App) *cobra.Command {
	var category string
	var weight float64

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a checklist item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := confluence.ValidateWeight(weight); err != nil {
				return err
			}

			item := &models.ConfluenceItem{
				UserID:   app.UserID(),
				Name:     args[0],
				Weight:   weight,
				Category: category,
				IsActive: true,
			}
			if err := app.Store.SaveConfluenceItem(ctx, item); err != nil {
				return err
			}

			output.Success("Checklist item %q added (weight %.1f)", item.Name, weight)
			return nil
		},
	}

	cmd.Flags().Float64Var(&weight, "weight", 1.0, "item weight (0 < w <= 10)")
	cmd.Flags().StringVar(&category, "category", "", "display category")

	return cmd
}

func newConfluenceListCmd(app *App) *cobra.Command {
	var category string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List checklist items grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			items, err := app.Store.GetConfluenceItems(ctx, store.ConfluenceFilter{
				UserID:     app.UserID(),
				Category:   category,
				ActiveOnly: !all,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(items)
			}
			if len(items) == 0 {
				output.Info("No checklist items. Add one with 'journal confluence add'.")
				return nil
			}

			categories, groups := confluence.ByCategory(items)
			for _, c := range categories {
				output.Bold(c)
				for _, item := range groups[c] {
					name := item.Name
					if !item.IsActive {
						name = output.DimText(name + " (inactive)")
					}
					output.Printf("  %s  %.1f  %s\n", TruncateString(item.ID, 8), item.Weight, name)
				}
			}
			output.Println()
			output.Printf("Total weight: %.1f, entry gate: %.1f\n",
				confluence.TotalWeight(items), confluence.GateThreshold)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().BoolVar(&all, "all", false, "include inactive items")

	return cmd
}

func newConfluenceDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete a checklist item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := app.Store.DeleteConfluenceItem(ctx, args[0]); err != nil {
				return err
			}
			output.Success("Checklist item %s deleted", args[0])
			return nil
		},
	}
}

func newConfluenceCheckCmd(app *App) *cobra.Command {
	var checked []string
	var tradeID string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Score a setup against the checklist",
		Long: `Score a setup by naming the checklist items that are present.
Reports the checked weight, progress, and whether the setup clears the
entry gate. With --trade, the selections are saved against that trade.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			catalog, err := app.Store.GetConfluenceItems(ctx, store.ConfluenceFilter{
				UserID:     app.UserID(),
				ActiveOnly: true,
			})
			if err != nil {
				return err
			}

			session := confluence.NewSession()
			for _, id := range checked {
				session.Check(id)
			}

			weight := confluence.CheckedWeight(catalog, session)
			progress := confluence.Progress(catalog, session)
			proceed := confluence.CanProceed(catalog, session)

			if tradeID != "" {
				if _, err := app.Store.GetTradeByID(ctx, tradeID); err != nil {
					return err
				}
				selections := make([]models.TradeConfluence, 0, len(catalog))
				for _, item := range catalog {
					selections = append(selections, models.TradeConfluence{
						TradeID:          tradeID,
						ConfluenceItemID: item.ID,
						Present:          session.IsChecked(item.ID),
					})
				}
				if err := app.Store.SaveTradeConfluence(ctx, tradeID, selections); err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"checked_weight": weight,
					"total_weight":   confluence.TotalWeight(catalog),
					"progress":       progress,
					"can_proceed":    proceed,
				})
			}

			categories, groups := confluence.ByCategory(catalog)
			for _, c := range categories {
				output.Bold(c)
				for _, item := range groups[c] {
					mark := output.DimText("✗")
					if session.IsChecked(item.ID) {
						mark = output.Green("✓")
					}
					output.Printf("  %s %s (%.1f)\n", mark, item.Name, item.Weight)
				}
			}
			output.Println()
			output.Printf("Checked weight: %.1f / %.1f (%.0f%%)\n",
				weight, confluence.TotalWeight(catalog), progress)
			if proceed {
				output.Success("Setup clears the %.1f entry gate", confluence.GateThreshold)
			} else {
				output.Warning("Setup below the %.1f entry gate", confluence.GateThreshold)
			}
			if tradeID != "" {
				output.Dim("Selections saved to trade %s", TruncateString(tradeID, 8))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&checked, "item", nil, "checked item id (repeatable)")
	cmd.Flags().StringVar(&tradeID, "trade", "", "save selections against a trade id")

	return cmd
}
