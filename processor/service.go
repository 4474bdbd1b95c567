package processor

import (
	"fleetcheck/config"
	"fleetcheck/outcome"
	"fleetcheck/report"
	"fleetcheck/rules"
	"fleetcheck/workbook"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Options struct {
	Header HeaderPolicy
	Table  *rules.Table
	Render report.RenderOptions
	Style  workbook.Style
	Logger *zap.Logger
}

// NewOptions builds run options from configuration. A nil logger disables
// logging.
func NewOptions(cfg config.Config, logger *zap.Logger) (Options, error) {
	table, err := BuildTable(cfg)
	if err != nil {
		return Options{}, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return Options{
		Header: HeaderPolicy{
			Mode:     cfg.Header.Mode,
			Row:      cfg.Header.Row,
			Marker:   cfg.Header.Marker,
			ScanRows: cfg.Header.ScanRows,
		},
		Table: table,
		Render: report.RenderOptions{
			ErrorLog:  cfg.Output.ErrorLog,
			ChangeLog: cfg.Output.ChangeLog,
		},
		Style:  workbook.Style{Fill: cfg.Style.Fill, Font: cfg.Style.Font},
		Logger: logger,
	}, nil
}

// BuildTable combines the fleet column mapping with the configured column
// rules; configured rules override built-in ones with the same key.
func BuildTable(cfg config.Config) (*rules.Table, error) {
	entries, err := rules.Canonical(rules.CanonicalOptions{
		Cutoff:   cfg.Matching.Cutoff,
		Year:     rules.Kind(cfg.Columns.Year),
		Comments: rules.Kind(cfg.Columns.Comments),
	})
	if err != nil {
		return nil, fmt.Errorf("build column rules: %w", err)
	}

	cutoff := cfg.Matching.Cutoff
	if cutoff == 0 {
		cutoff = rules.DefaultCutoff
	}
	for i, columnRule := range cfg.Columns.Rules {
		kind, err := rules.ParseKind(columnRule.Rule)
		if err != nil {
			return nil, fmt.Errorf("column rule %d (%s): %w", i, columnRule.Key, err)
		}
		rule, err := rules.New(kind, columnRule.Options, cutoff)
		if err != nil {
			return nil, fmt.Errorf("column rule %d (%s): %w", i, columnRule.Key, err)
		}
		entries = append(entries, rules.Entry{Key: columnRule.Key, Rule: rule})
	}

	table, err := rules.NewTable(entries)
	if err != nil {
		return nil, fmt.Errorf("build column rules: %w", err)
	}
	return table, nil
}

// Run validates every data row of sheet without modifying it.
func Run(sheet workbook.Sheet, opts Options) (*report.Summary, error) {
	if opts.Table == nil {
		return nil, fmt.Errorf("run options have no rule table")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	startedAt := time.Now()
	rows, err := sheet.Rows()
	if err != nil {
		return nil, err
	}

	header, err := LocateHeader(rows, opts.Header)
	if err != nil {
		return nil, err
	}
	bindings, err := Bind(header, opts.Table)
	if err != nil {
		return nil, err
	}

	ruled := 0
	for _, binding := range bindings {
		if binding.Rule != nil {
			ruled++
		}
	}
	logger.Debug("resolved header",
		zap.Int("row", header.Row),
		zap.Int("columns", header.Width()),
		zap.Int("ruled_columns", ruled),
	)

	state := rules.NewState()
	outcomes := make([]outcome.Cell, 0, max(len(rows)-header.Row, 0)*ruled)
	for i := header.Row; i < len(rows); i++ {
		outcomes = append(outcomes, ProcessRow(i+1, rows[i], bindings, state)...)
	}

	summary := report.Finalize(outcomes)
	summary.RunID = uuid.NewString()
	summary.HeaderRow = header.Row
	summary.StartedAt = startedAt
	summary.FinishedAt = time.Now()
	if named, ok := sheet.(interface{ Name() string }); ok {
		summary.Source = named.Name()
	}
	if hashed, ok := sheet.(interface{ Fingerprint() string }); ok {
		summary.Fingerprint = hashed.Fingerprint()
	}

	logger.Info("validated sheet",
		zap.String("run_id", summary.RunID),
		zap.String("source", summary.Source),
		zap.Int("data_rows", max(len(rows)-header.Row, 0)),
		zap.Int("errors", summary.ErrorCount()),
		zap.Int("corrections", summary.CorrectionCount()),
		zap.Duration("elapsed", summary.Duration()),
	)
	return summary, nil
}

// Validate runs the sheet and renders the result back into it.
func Validate(sheet workbook.Sheet, opts Options) (*report.Summary, error) {
	summary, err := Run(sheet, opts)
	if err != nil {
		return nil, err
	}
	if err := report.Render(sheet, summary, opts.Render); err != nil {
		return nil, err
	}
	return summary, nil
}
