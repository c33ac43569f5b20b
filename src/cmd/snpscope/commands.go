package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"snpscope/src/logger"
	"snpscope/src/lookup"
	"snpscope/src/rsid"
	"snpscope/src/scheduler"
	"snpscope/src/search"
	"snpscope/src/tui"
)

// uiCmd opens the interactive search screen.
var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive search screen (default)",
	Long: `Opens the interactive search screen.

Type an RSID to get suggestions after a short pause, press Enter to look
it up, or press Tab to switch to batch search and Ctrl+S to submit.
Ctrl+R shows recent searches.

The TUI owns the terminal, so logs go to SNPSCOPE_LOG_FILE when it is set
and are discarded otherwise.`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	log, err := logger.New(appConfig.LogFile, logger.NewSilentLogger())
	if err != nil {
		return err
	}
	if fl, ok := log.(*logger.FileLogger); ok {
		defer fl.Close()
	}

	rt, err := startRuntime(cmd.Context(), log)
	if err != nil {
		return err
	}
	defer rt.Close()

	sched := scheduler.New(rt.Client,
		scheduler.WithQuietPeriod(appConfig.DebounceInterval),
		scheduler.WithLogger(log),
	)
	model := tui.NewMainModel(rt.Coordinator, sched,
		tui.WithStats(rt.Client),
		tui.WithHistory(rt.Store),
		tui.WithServiceURL(appConfig.ServiceURL),
	)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// lookupCmd looks up one identifier.
var lookupCmd = &cobra.Command{
	Use:   "lookup [rsid]",
	Short: "Look up one RSID",
	Long: `Looks up one RSID and prints its genotype, chromosome and position
with reference links. When the RSID is not in your data, reference links
are printed anyway.

Example:
  snpscope lookup rs53576
  snpscope lookup 53576`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := startRuntime(cmd.Context(), commandLogger())
		if err != nil {
			return err
		}
		defer rt.Close()

		resp := rt.Coordinator.Run(cmd.Context(), search.SingleRequest(args[0]))
		out := resp.Single
		if out.Kind == search.Failed {
			return lookup.WrapError(out.Err)
		}
		printSingle(cmd.OutOrStdout(), *out)
		return nil
	},
}

// batchCmd looks up several identifiers at once.
var batchCmd = &cobra.Command{
	Use:   "batch [rsids]",
	Short: "Look up several RSIDs at once",
	Long: `Looks up comma or newline separated RSIDs in one request and reports
how many were found. Identifiers that are not in your data are listed.

Use "-" to read the list from stdin.

Example:
  snpscope batch rs53576,rs7412,rs429358
  snpscope batch --json "rs53576, rs7412"
  cat rsids.txt | snpscope batch -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := args[0]
		if text == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = strings.TrimSpace(string(data))
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		rt, err := startRuntime(cmd.Context(), commandLogger())
		if err != nil {
			return err
		}
		defer rt.Close()

		out := rt.Coordinator.Run(cmd.Context(), search.BatchRequest(text)).Batch

		if asJSON {
			if err := writeBatchJSON(cmd.OutOrStdout(), *out); err != nil {
				return err
			}
			if out.Failed() {
				return lookup.WrapError(out.Err)
			}
			return nil
		}

		if out.Failed() {
			return lookup.WrapError(out.Err)
		}
		printBatch(cmd.OutOrStdout(), *out)
		return nil
	},
}

// suggestCmd lists identifiers that start with a prefix.
var suggestCmd = &cobra.Command{
	Use:   "suggest [prefix]",
	Short: "List RSIDs in your data that start with a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := startRuntime(cmd.Context(), commandLogger())
		if err != nil {
			return err
		}
		defer rt.Close()

		matches, err := rt.Coordinator.Suggest(cmd.Context(), args[0])
		if err != nil {
			return lookup.WrapError(err)
		}
		printSuggestions(cmd.OutOrStdout(), rsid.Normalize(args[0]), matches)
		return nil
	},
}

// historyCmd lists recent explicit searches.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent searches",
	Long: `Lists recent explicit searches, newest first. Only queries and
counts are kept, never genotypes.

History survives between runs when POSTGRES_DSN or SNPSCOPE_HISTORY_DB is
set; otherwise it only covers the current process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := startRuntime(cmd.Context(), commandLogger())
		if err != nil {
			return err
		}
		defer rt.Close()

		events, err := rt.Store.RecentSearches(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		printHistory(cmd.OutOrStdout(), events, time.Now())
		return nil
	},
}

// statsCmd reports the loaded dataset.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many SNPs the lookup service has loaded",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := lookup.NewClient(appConfig.ServiceURL,
			lookup.WithTimeout(appConfig.RequestTimeout),
			lookup.WithLogger(commandLogger()),
		)

		stats, err := client.Stats(cmd.Context())
		if err != nil {
			return lookup.WrapError(err)
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}
