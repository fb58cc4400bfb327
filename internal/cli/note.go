// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

// addNoteCommands adds journal note commands.
func addNoteCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Journal notes",
		Long:  "Free-form journal notes, optionally attached to a trade.",
	}

	cmd.AddCommand(newNoteAddCmd(app))
	cmd.AddCommand(newNoteListCmd(app))
	cmd.AddCommand(newNoteDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newNoteAddCmd(app *App) *cobra.Command {
	var title, tradeID string
	var tags []string
	var screenshots []string

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if len(screenshots) > models.MaxScreenshots {
				return fmt.Errorf("at most %d screenshots per note", models.MaxScreenshots)
			}
			if tradeID != "" {
				if _, err := app.Store.GetTradeByID(ctx, tradeID); err != nil {
					return err
				}
			}

			note := &models.Note{
				UserID:      app.UserID(),
				TradeID:     tradeID,
				Title:       title,
				Content:     strings.Join(args, " "),
				Tags:        tags,
				Screenshots: screenshots,
			}
			if err := app.Store.SaveNote(ctx, note); err != nil {
				return err
			}

			output.Success("Note saved (%s)", TruncateString(note.ID, 8))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&tradeID, "trade", "", "attach to a trade id")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringSliceVar(&screenshots, "screenshot", nil, "screenshot URL (repeatable)")

	return cmd
}

func newNoteListCmd(app *App) *cobra.Command {
	var tradeID, tag string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			notes, err := app.Store.GetNotes(ctx, store.NoteFilter{
				UserID:  app.UserID(),
				TradeID: tradeID,
				Tag:     tag,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(notes)
			}
			if len(notes) == 0 {
				output.Info("No notes found.")
				return nil
			}

			for _, n := range notes {
				header := FormatDateTime(n.CreatedAt)
				if n.Title != "" {
					header += "  " + n.Title
				}
				output.Bold(header)
				output.Printf("  %s\n", n.Content)
				if len(n.Tags) > 0 {
					output.Dim("  #%s", strings.Join(n.Tags, " #"))
				}
				if n.TradeID != "" {
					output.Dim("  trade %s", TruncateString(n.TradeID, 8))
				}
				output.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tradeID, "trade", "", "filter by trade id")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by tag")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum notes")

	return cmd
}

func newNoteDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			if err := app.Store.DeleteNote(ctx, args[0]); err != nil {
				return err
			}
			output.Success("Note %s deleted", args[0])
			return nil
		},
	}
}
