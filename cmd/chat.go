package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/remembra/remembra/internal/agent"
	"github.com/remembra/remembra/internal/app"
	"github.com/remembra/remembra/internal/auth"
	"github.com/remembra/remembra/internal/config"
	"github.com/remembra/remembra/internal/conversation"
)

var chatNew bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant",
	Long: `Start an interactive chat. Consecutive invocations resume the same
conversation; use --new to start a fresh one.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatNew, "new", false, "start a new conversation")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	dir, err := config.Dir()
	if err != nil {
		return err
	}

	// One turn at a time across processes.
	current := conversation.NewCurrentFile(dir)
	if err := current.Acquire(); err != nil {
		if errors.Is(err, conversation.ErrTurnInProgress) {
			return errors.New("another remembra chat is already running")
		}
		return err
	}
	defer func() {
		if err := current.Release(); err != nil {
			logger.Warn("releasing conversation lock", "error", err)
		}
	}()

	ctx = auth.WithOwnerID(ctx, ownerID())

	conv, err := resumeOrCreate(ctx, a, current)
	if err != nil {
		return err
	}

	if transcript := conversation.Transcript(conv); transcript != "" {
		fmt.Print(transcript)
		fmt.Println()
	}
	fmt.Println("Type a message, or exit to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if err := runTurn(ctx, a, conv, input); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// resumeOrCreate loads the recorded current conversation, falling back
// to a new one when none exists or the recorded one was deleted.
func resumeOrCreate(ctx context.Context, a *app.App, current *conversation.CurrentFile) (*conversation.Conversation, error) {
	owner, err := auth.Require(ctx)
	if err != nil {
		return nil, err
	}

	if !chatNew {
		id, err := current.Load()
		if err != nil {
			return nil, err
		}
		if id != nil {
			conv, err := a.Conversations.GetConversation(ctx, owner, *id)
			if err == nil {
				return conv, nil
			}
			if !errors.Is(err, conversation.ErrNotFound) {
				return nil, err
			}
		}
	}

	conv, err := a.Conversations.CreateConversation(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := current.Save(conv.ID); err != nil {
		return nil, err
	}
	return conv, nil
}

// runTurn executes one turn and renders its event stream to the
// terminal. The stream must be drained; persistence happens inside it.
func runTurn(ctx context.Context, a *app.App, conv *conversation.Conversation, input string) error {
	state := conversation.NewState(conv)

	var turnErr error
	streaming := false
	for ev := range a.Orchestrator.RunStream(ctx, state, input) {
		switch ev.Kind {
		case agent.EventTextDelta:
			if !streaming {
				fmt.Print("Assistant: ")
				streaming = true
			}
			fmt.Print(ev.Delta)
		case agent.EventToolPending:
			if streaming {
				fmt.Println()
				streaming = false
			}
			fmt.Printf("[%s...]\n", ev.ToolName)
		case agent.EventToolDone:
			// Completion is implied by the next delta or status line.
		case agent.EventTurnDone:
			if streaming {
				fmt.Println()
			}
		case agent.EventTurnError:
			if streaming {
				fmt.Println()
			}
			turnErr = ev.Err
		}
	}
	return turnErr
}
