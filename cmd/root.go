// Package cmd implements the remembra command line interface.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/remembra/remembra/internal/config"
	"github.com/remembra/remembra/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "remembra",
	Short: "Remembra is a chat assistant with a personal knowledge base",
	Long: `Remembra is a terminal chat assistant that remembers what you tell it.
Facts you share are stored in a personal knowledge base and retrieved
to ground later answers.

Running remembra without arguments starts a chat.`,
	SilenceUsage: true,
	RunE:         runChat,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	// The bare command runs chat, so it takes chat's flags too.
	rootCmd.Flags().BoolVar(&chatNew, "new", false, "start a new conversation")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads and validates configuration, turning the missing API
// key error into actionable guidance.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			fmt.Fprintln(os.Stderr, "GEMINI_API_KEY is not set. Run:")
			fmt.Fprintln(os.Stderr, "  export GEMINI_API_KEY=your-api-key")
		}
		return nil, err
	}
	return cfg, nil
}

func newLogger() log.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level})
}

// ownerID identifies the local user. The CLI is single-user; identity
// is the OS account so separate accounts keep separate knowledge bases.
func ownerID() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
