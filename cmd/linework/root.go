package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/linework/internal/adapters/logging"
	"github.com/felixgeelhaar/linework/internal/app"
	"github.com/felixgeelhaar/linework/internal/domain/config"
	"github.com/felixgeelhaar/linework/internal/ports"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "linework",
	Short: "A replayable construction step engine",
	Long: `Linework records geometric constructions as an ordered step log and
replays them deterministically.

Every point, line, path or expansion is a step referencing earlier steps,
so editing one step recomputes exactly its dependents:
  Script → Append → Recompute → Snap → Recognize`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: linework.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")

	// Register flag completions
	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// newLinework loads configuration, builds the logger and wires the
// application the subcommands share.
func newLinework(ctx context.Context) (*app.Linework, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, newLogger(cfg))
}

// loadConfig reads the configured file, treating the default file name
// as optional and an explicit --config path as required.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadOrDefault(config.DefaultFile)
}

// newLogger builds the console logger from the config file's log section
// with the --log-level and --log-json flags taking precedence.
func newLogger(cfg *config.Config) ports.Logger {
	name := cfg.Log.Level
	if logLevel != "" {
		name = logLevel
	}
	level, _ := ports.ParseLevel(name)

	return logging.New(
		logging.WithLevel(level),
		logging.WithJSON(logJSON),
	)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *config.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	// Complete --config with TOML files
	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	// Complete --log-level with known levels
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"debug\tEverything, including per-step recompute",
			"info\tLifecycle events (default)",
			"warn\tRejected steps and degraded behavior",
			"error\tFailures only",
		}, cobra.ShellCompDirectiveNoFileComp
	})
}
