// Package main provides the snpscope CLI.
// The CLI is the application orchestrator: it loads configuration, starts the
// search runtime and hands it to the TUI or to a one-shot command.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"snpscope/src/config"
	"snpscope/src/logger"
	"snpscope/src/lookup"
	"snpscope/src/pipeline"
)

var (
	// Application configuration
	appConfig *config.Config
	// Flag values shared by every command
	serviceURL string
	verbose    bool
)

// rootCmd launches the TUI when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "snpscope",
	Short: "snpscope - look up RSIDs in your DNA data",
	Long: `snpscope searches a genetic variant lookup service for RSIDs
(reference SNP identifiers such as rs53576).

Run without a subcommand to open the interactive search screen, which
suggests identifiers as you type. One-shot commands print to stdout.

The lookup service is set with SNPSCOPE_SERVICE_URL or --service-url.
Set REDPANDA_BROKERS to publish search events to Redpanda, and
POSTGRES_DSN or SNPSCOPE_HISTORY_DB to keep search history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if serviceURL != "" {
			os.Setenv(config.EnvServiceURL, serviceURL)
		}

		var err error
		appConfig, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			fmt.Fprintf(os.Stderr, "Please set %s or pass --service-url\n", config.EnvServiceURL)
			os.Exit(1)
		}
	},
	RunE: runUI,
}

// commandLogger is used by one-shot commands, which own stdout.
func commandLogger() logger.Logger {
	if verbose {
		return logger.NewVerboseConsoleLogger()
	}
	return logger.NewSilentLogger()
}

// startRuntime starts the search runtime for a command.
func startRuntime(ctx context.Context, log logger.Logger) (*pipeline.Runtime, error) {
	rt, err := pipeline.Start(ctx, appConfig, log)
	if err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	log.Debug("[CLI] Running in %s mode", rt.Mode)
	return rt, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", "", "Lookup service URL (overrides "+config.EnvServiceURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs")

	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)

	batchCmd.Flags().Bool("json", false, "Print the result as JSON")
	historyCmd.Flags().IntP("limit", "n", 0, "Maximum number of searches to list (default 20)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var userErr *lookup.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
