package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/abhisek/feedsight/internal/logging"
	"github.com/abhisek/feedsight/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "feedsight",
	Short: "Customer feedback insights from rules and language models",
	Long: "feedsight analyzes short customer feedback with a keyword rule classifier and a\n" +
		"language model, then reconciles both into one final decision per item.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(cmd)
	},
}

// Execute runs the CLI; an interrupt cancels in-flight model calls.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides FEEDSIGHT_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before configuration is resolved")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default FEEDSIGHT_LOG_LEVEL or info)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile applies --env-file without overriding variables already set.
// The default file may be absent; an explicitly named one must exist.
func loadEnvFile(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("env-file") {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// newLogger builds the stderr logger from --log-level, then
// FEEDSIGHT_LOG_LEVEL.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")
	if name == "" {
		name = os.Getenv("FEEDSIGHT_LOG_LEVEL")
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   level,
		NoColor: os.Getenv("NO_COLOR") != "",
	}), nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then FEEDSIGHT_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the event database named by --db or its defaults.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
