package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/remembra/remembra/internal/app"
	"github.com/remembra/remembra/internal/auth"
	"github.com/remembra/remembra/internal/config"
	"github.com/remembra/remembra/internal/conversation"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "Manage past conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE:  runConversationsList,
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsShow,
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runConversationsDelete,
}

func init() {
	conversationsCmd.AddCommand(conversationsListCmd)
	conversationsCmd.AddCommand(conversationsShowCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)
	rootCmd.AddCommand(conversationsCmd)
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		owner, err := auth.Require(ctx)
		if err != nil {
			return err
		}

		convs, err := a.Conversations.ListByOwner(ctx, owner)
		if err != nil {
			return fmt.Errorf("listing conversations: %w", err)
		}
		if len(convs) == 0 {
			fmt.Println("No conversations yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUPDATED\tMESSAGES\tTITLE")
		for _, c := range convs {
			title := c.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.ID, c.UpdatedAt.UTC().Format("2006-01-02 15:04"), c.MessageCount, title)
		}
		return w.Flush()
	})
}

func runConversationsShow(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid conversation ID %q: %w", args[0], err)
	}

	return withApp(func(ctx context.Context, a *app.App) error {
		owner, err := auth.Require(ctx)
		if err != nil {
			return err
		}

		conv, err := a.Conversations.GetConversation(ctx, owner, id)
		if err != nil {
			if errors.Is(err, conversation.ErrNotFound) {
				return fmt.Errorf("conversation %s not found", id)
			}
			return fmt.Errorf("loading conversation: %w", err)
		}
		fmt.Print(conversation.Transcript(conv))
		return nil
	})
}

func runConversationsDelete(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid conversation ID %q: %w", args[0], err)
	}

	return withApp(func(ctx context.Context, a *app.App) error {
		owner, err := auth.Require(ctx)
		if err != nil {
			return err
		}

		if err := a.Conversations.DeleteConversation(ctx, owner, id); err != nil {
			if errors.Is(err, conversation.ErrNotFound) {
				return fmt.Errorf("conversation %s not found", id)
			}
			return fmt.Errorf("deleting conversation: %w", err)
		}

		// Forget the current-conversation pointer if it referenced the
		// deleted conversation.
		if dir, err := config.Dir(); err == nil {
			current := conversation.NewCurrentFile(dir)
			if cur, err := current.Load(); err == nil && cur != nil && *cur == id {
				if err := current.Clear(); err != nil {
					fmt.Fprintf(os.Stderr, "warning: clearing current conversation: %v\n", err)
				}
			}
		}

		fmt.Printf("Deleted %s\n", id)
		return nil
	})
}
