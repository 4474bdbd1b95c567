package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fleetcheck/config"
	"fleetcheck/outcome"
	"fleetcheck/storage"
)

var (
	historyDBPath    string
	historyDeleteAll bool
)

var (
	historyPromptInput  io.Reader = os.Stdin
	historyPromptOutput io.Writer = os.Stdout
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and clean up recorded validation runs",
	Long: `Runs are recorded when history is enabled (history.enabled or --history on).

Each record keeps the input name and fingerprint, header row, error and
correction counts, timing, and every errored or corrected cell.`,
	Example: `
  # List recorded runs, newest first
  fleetcheck history list

  # Show errors and corrections of one run
  fleetcheck history show 1b4e28ba-2fa1-11d2-883f-0016d3cca427

  # Delete one run
  fleetcheck history delete 1b4e28ba-2fa1-11d2-883f-0016d3cca427

  # Delete every run (asks for confirmation)
  fleetcheck history delete --all
`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns()
		if err != nil {
			return err
		}
		printRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the errors and corrections of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.GetRun(args[0])
		if err != nil {
			return err
		}
		cells, err := store.ListRunOutcomes(run.ID)
		if err != nil {
			return err
		}
		printRun(cmd.OutOrStdout(), run, cells)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete one run, or every run with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyDeleteAll == (len(args) == 1) {
			return fmt.Errorf("pass either one run id or --all")
		}

		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if historyDeleteAll {
			confirmed, err := confirmDeletePrompt(historyPromptInput, historyPromptOutput, "every recorded run")
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("delete aborted: confirmation was not 'Y'")
			}
			deleted, err := store.DeleteAllRuns()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s)\n", deleted)
			return nil
		}

		deleted, err := store.DeleteRun(args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("delete run %s: %w", args[0], storage.ErrRunNotFound)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)

	historyCmd.PersistentFlags().StringVar(&historyDBPath, "db", "", "Path to run history SQLite database (default: history.db from config)")
	historyDeleteCmd.Flags().BoolVar(&historyDeleteAll, "all", false, "Delete every recorded run")
}

func openHistoryStore() (*storage.SQLiteStore, error) {
	path := strings.TrimSpace(historyDBPath)
	if path == "" {
		path = viper.GetString(config.KeyHistoryDB)
	}
	if path == "" {
		path = config.DefaultHistoryDB
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("run history not found: %s", path)
		}
		return nil, fmt.Errorf("stat run history: %w", err)
	}
	return storage.OpenSQLite(path)
}

func printRuns(out io.Writer, runs []storage.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return
	}
	fmt.Fprintf(out, "%-36s  %-19s  %6s  %11s  %s\n", "ID", "STARTED", "ERRORS", "CORRECTIONS", "SOURCE")
	for _, run := range runs {
		fmt.Fprintf(out, "%-36s  %-19s  %6d  %11d  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.ErrorCount,
			run.CorrectionCount,
			run.Source,
		)
	}
}

func printRun(out io.Writer, run storage.RunRecord, cells []outcome.Cell) {
	fmt.Fprintf(out, "Run:         %s\n", run.ID)
	fmt.Fprintf(out, "Source:      %s\n", run.Source)
	fmt.Fprintf(out, "Fingerprint: %s\n", run.Fingerprint)
	fmt.Fprintf(out, "Header row:  %d\n", run.HeaderRow)
	fmt.Fprintf(out, "Started:     %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Duration:    %s\n", run.FinishedAt.Sub(run.StartedAt))
	fmt.Fprintf(out, "%d errors detected, %d values auto-corrected\n", run.ErrorCount, run.CorrectionCount)

	for _, cell := range cells {
		switch cell.Status {
		case outcome.Errored:
			fmt.Fprintf(out, "  row %d %s: %q %s\n", cell.Row, cell.Label, cell.Original, cell.Reason)
		case outcome.Corrected:
			fmt.Fprintf(out, "  row %d %s: %q -> %q\n", cell.Row, cell.Label, cell.Original, cell.New)
		}
	}
}

func confirmDeletePrompt(input io.Reader, output io.Writer, target string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete %s? Type Y to confirm: ", target); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}
