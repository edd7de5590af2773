package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/remembra/remembra/internal/app"
	"github.com/remembra/remembra/internal/auth"
	"github.com/remembra/remembra/internal/knowledge"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Manage the knowledge base",
}

var resourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored resources",
	RunE:  runResourcesList,
}

var resourcesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a resource and its embeddings",
	Args:  cobra.ExactArgs(1),
	RunE:  runResourcesDelete,
}

func init() {
	resourcesCmd.AddCommand(resourcesListCmd)
	resourcesCmd.AddCommand(resourcesDeleteCmd)
	rootCmd.AddCommand(resourcesCmd)
}

// withApp handles the setup/teardown shared by the resource commands.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing application", "error", err)
		}
	}()

	return fn(auth.WithOwnerID(ctx, ownerID()), a)
}

func runResourcesList(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		owner, err := auth.Require(ctx)
		if err != nil {
			return err
		}

		resources, err := a.Knowledge.ListByOwner(ctx, owner)
		if err != nil {
			return fmt.Errorf("listing resources: %w", err)
		}
		if len(resources) == 0 {
			fmt.Println("No resources stored yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tTITLE")
		for _, r := range resources {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.CreatedAt.UTC().Format("2006-01-02"), r.Title)
		}
		return w.Flush()
	})
}

func runResourcesDelete(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid resource ID %q: %w", args[0], err)
	}

	return withApp(func(ctx context.Context, a *app.App) error {
		owner, err := auth.Require(ctx)
		if err != nil {
			return err
		}

		if err := a.Knowledge.DeleteResource(ctx, owner, id); err != nil {
			if errors.Is(err, knowledge.ErrNotFound) {
				return fmt.Errorf("resource %s not found", id)
			}
			return fmt.Errorf("deleting resource: %w", err)
		}
		fmt.Printf("Deleted %s\n", id)
		return nil
	})
}
