package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fleetcheck/config"
	"fleetcheck/processor"
	"fleetcheck/report"
	"fleetcheck/storage"
	"fleetcheck/workbook"
)

var (
	validateInputs      []string
	validateOutput      string
	validateChanges     string
	validateHistoryMode string
	validateDBPath      string
	validateHeaderRow   int
	validateMarker      string
	validateJobs        int
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate fleet workbooks and write annotated copies",
	Long: `Locate the header row of each input, validate every data cell against its column
rule, and write an annotated workbook next to the input as <name>_validado.xlsx.

Corrected values are written back in place. Cells that fail validation keep their
original value and are highlighted. "Log de Errores" and "Resumen de Cambios"
sheets are appended unless disabled in configuration.

Duplicate domain codes are detected per file; files never share state.`,
	Example: `
  # Validate one workbook
  fleetcheck validate -i flota.xlsx

  # Explicit output path and a CSV change log
  fleetcheck validate -i flota.xlsx -o ./revisado.xlsx --changes ./cambios.csv

  # Header is always on row 4
  fleetcheck validate -i flota.csv --header-row 4

  # Several files, three at a time, recording run history
  fleetcheck validate -i a.xlsx -i b.xlsx -i c.xlsx --jobs 3 --history on --db ./fleetcheck.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		if err := applyHeaderOverrides(cfg, validateHeaderRow, validateMarker); err != nil {
			return err
		}
		if len(validateInputs) > 1 && (validateOutput != "" || validateChanges != "") {
			return fmt.Errorf("--output and --changes can only be used with a single input")
		}

		recordHistory, err := resolveHistoryMode(validateHistoryMode, cfg.History.Enabled)
		if err != nil {
			return err
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		opts, err := processor.NewOptions(*cfg, logger)
		if err != nil {
			return err
		}

		var store *storage.SQLiteStore
		if recordHistory {
			dbPath := validateDBPath
			if dbPath == "" {
				dbPath = cfg.History.DB
			}
			store, err = storage.OpenSQLite(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
		}

		jobs := []validateJob{}
		for _, input := range validateInputs {
			jobs = append(jobs, validateJob{
				input:   input,
				output:  validateOutput,
				changes: validateChanges,
				suffix:  cfg.Output.Suffix,
			})
		}

		results := runValidateJobs(jobs, opts, validateJobs)
		return reportValidateResults(cmd.OutOrStdout(), results, store, logger)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringArrayVarP(&validateInputs, "input", "i", nil, "Input workbook path: .xlsx, .xlsm or .csv (repeatable)")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "", "Annotated workbook path (default: <input>_validado.xlsx, single input only)")
	validateCmd.Flags().StringVar(&validateChanges, "changes", "", "Also write the change log to this .xlsx or .csv file (single input only)")
	validateCmd.Flags().StringVar(&validateHistoryMode, "history", "auto", "Record run history: auto|on|off (auto uses history.enabled)")
	validateCmd.Flags().StringVar(&validateDBPath, "db", "", "Path to run history SQLite database (default: history.db from config)")
	validateCmd.Flags().IntVar(&validateHeaderRow, "header-row", 0, "Use this fixed 1-based header row instead of scanning")
	validateCmd.Flags().StringVar(&validateMarker, "marker", "", "Header marker column name used when scanning")
	validateCmd.Flags().IntVarP(&validateJobs, "jobs", "j", 1, "Number of files validated concurrently")

	_ = validateCmd.MarkFlagRequired("input")
}

type validateJob struct {
	input   string
	output  string
	changes string
	suffix  string
}

type validateResult struct {
	job     validateJob
	output  string
	summary *report.Summary
	err     error
}

// runValidateJobs validates every job with at most limit files in flight.
// Results keep input order; a failing file does not stop the others.
func runValidateJobs(jobs []validateJob, opts processor.Options, limit int) []validateResult {
	if limit < 1 {
		limit = 1
	}

	results := make([]validateResult, len(jobs))
	var group errgroup.Group
	group.SetLimit(limit)
	for i, job := range jobs {
		group.Go(func() error {
			output, summary, err := validateFile(job, opts)
			results[i] = validateResult{job: job, output: output, summary: summary, err: err}
			return nil
		})
	}
	_ = group.Wait()

	return results
}

func validateFile(job validateJob, opts processor.Options) (string, *report.Summary, error) {
	book, err := workbook.Open(job.input, opts.Style)
	if err != nil {
		return "", nil, err
	}
	defer book.Close()

	summary, err := processor.Validate(book, opts)
	if err != nil {
		return "", nil, fmt.Errorf("validate %s: %w", job.input, err)
	}

	output := job.output
	if output == "" {
		output = workbook.OutputName(job.input, job.suffix)
	}
	if err := book.SaveAs(output); err != nil {
		return "", nil, err
	}

	if job.changes != "" {
		if err := report.WriteChangeLogFile(job.changes, summary); err != nil {
			return "", nil, err
		}
	}

	return output, summary, nil
}

func reportValidateResults(out io.Writer, results []validateResult, store *storage.SQLiteStore, logger *zap.Logger) error {
	failed := 0
	for _, result := range results {
		if result.err != nil {
			failed++
			fmt.Fprintf(out, "%s: FAILED: %v\n", result.job.input, result.err)
			continue
		}

		summary := result.summary
		fmt.Fprintf(out, "%s: header at row %d\n", result.job.input, summary.HeaderRow)
		fmt.Fprintf(out, "  %s\n", summary.Headline())
		for _, tally := range summary.CorrectionsByColumn() {
			fmt.Fprintf(out, "  %-24s %d\n", tally.Label, tally.Count)
		}
		fmt.Fprintf(out, "  Saved: %s\n", result.output)
		if result.job.changes != "" {
			fmt.Fprintf(out, "  Change log: %s\n", result.job.changes)
		}

		if store == nil {
			continue
		}
		if previous, err := store.ListRunsByFingerprint(summary.Fingerprint); err == nil && len(previous) > 0 {
			fmt.Fprintf(out, "  Same file validated %d time(s) before, last at %s (run %s)\n",
				len(previous),
				previous[0].StartedAt.Local().Format("2006-01-02 15:04:05"),
				previous[0].ID,
			)
		}
		if err := store.InsertRun(summary); err != nil {
			logger.Error("record run history", zap.String("run_id", summary.RunID), zap.Error(err))
			fmt.Fprintf(out, "  Warning: run history not recorded: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "  Run recorded: %s\n", summary.RunID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(results))
	}
	return nil
}

func applyHeaderOverrides(cfg *config.Config, headerRow int, marker string) error {
	if headerRow < 0 {
		return fmt.Errorf("invalid --header-row %d (must be >= 1)", headerRow)
	}
	if headerRow > 0 {
		cfg.Header.Mode = processor.HeaderModeFixed
		cfg.Header.Row = headerRow
	}
	if marker = strings.TrimSpace(marker); marker != "" {
		cfg.Header.Marker = marker
	}
	return nil
}

func resolveHistoryMode(mode string, configDefault bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return configDefault, nil
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid history mode %q (supported: auto|on|off)", mode)
	}
}
