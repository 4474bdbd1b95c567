package cmd

import (
	"bytes"
	"errors"
	"fleetcheck/config"
	"fleetcheck/processor"
	"fleetcheck/report"
	"fleetcheck/storage"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

func writeFleetCSV(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testRunOptions(t *testing.T) processor.Options {
	t.Helper()

	opts, err := processor.NewOptions(config.Default(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("build options: %v", err)
	}
	return opts
}

func TestRunValidateJobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	norte := writeFleetCSV(t, dir, "norte.csv", "Dominio;Marca\nAB-123-CD;toyota\nab123cd;Ford\n")
	sur := writeFleetCSV(t, dir, "sur.csv", "Dominio;Marca\nAB123CD;Fiat\n")
	broken := writeFleetCSV(t, dir, "roto.csv", "Marca;Modelo\nFord;Ka\n")
	changes := filepath.Join(dir, "cambios.csv")

	jobs := []validateJob{
		{input: norte, changes: changes, suffix: "_validado"},
		{input: sur, output: filepath.Join(dir, "sur-out.xlsx"), suffix: "_validado"},
		{input: broken, suffix: "_validado"},
	}
	results := runValidateJobs(jobs, testRunOptions(t), 2)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	first := results[0]
	if first.err != nil {
		t.Fatalf("validate norte: %v", first.err)
	}
	if first.output != filepath.Join(dir, "norte_validado.xlsx") {
		t.Fatalf("unexpected output path %q", first.output)
	}
	if first.summary.ErrorCount() != 1 || first.summary.CorrectionCount() != 2 {
		t.Fatalf("unexpected norte summary: %s", first.summary.Headline())
	}
	if _, err := os.Stat(changes); err != nil {
		t.Fatalf("expected change log file: %v", err)
	}

	book, err := excelize.OpenFile(first.output)
	if err != nil {
		t.Fatalf("open annotated workbook: %v", err)
	}
	defer book.Close()
	if value, _ := book.GetCellValue(book.GetSheetName(0), "A2"); value != "AB123CD" {
		t.Fatalf("expected corrected domain, got %q", value)
	}
	if index, err := book.GetSheetIndex(report.ErrorSheet); err != nil || index < 0 {
		t.Fatalf("expected error log sheet")
	}

	// duplicate tracking is per file
	if results[1].err != nil || results[1].summary.ErrorCount() != 0 {
		t.Fatalf("expected clean sur result, got %+v", results[1])
	}
	if results[1].output != filepath.Join(dir, "sur-out.xlsx") {
		t.Fatalf("unexpected explicit output %q", results[1].output)
	}

	if !errors.Is(results[2].err, processor.ErrHeaderNotFound) {
		t.Fatalf("expected header not found, got %v", results[2].err)
	}
}

func TestReportValidateResultsRecordsHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := writeFleetCSV(t, dir, "flota.csv", "Dominio;Combustible\nAB-123-CD;diesl\n")
	store, err := storage.OpenSQLite(filepath.Join(dir, "fleetcheck.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	opts := testRunOptions(t)
	logger := zaptest.NewLogger(t)
	job := validateJob{input: input, suffix: "_validado"}

	var first bytes.Buffer
	if err := reportValidateResults(&first, runValidateJobs([]validateJob{job}, opts, 1), store, logger); err != nil {
		t.Fatalf("report first run: %v", err)
	}
	for _, want := range []string{"header at row 1", "0 errors detected, 2 values auto-corrected", "Dominio", "Combustible", "Run recorded:"} {
		if !strings.Contains(first.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, first.String())
		}
	}
	if strings.Contains(first.String(), "validated 1 time(s) before") {
		t.Fatalf("did not expect a previous run notice on first run")
	}

	var second bytes.Buffer
	if err := reportValidateResults(&second, runValidateJobs([]validateJob{job}, opts, 1), store, logger); err != nil {
		t.Fatalf("report second run: %v", err)
	}
	if !strings.Contains(second.String(), "Same file validated 1 time(s) before") {
		t.Fatalf("expected previous run notice:\n%s", second.String())
	}

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(runs))
	}
}

func TestReportValidateResultsFailsOnAnyError(t *testing.T) {
	t.Parallel()

	results := []validateResult{
		{job: validateJob{input: "missing.xlsx"}, err: errors.New("read workbook missing.xlsx: no such file")},
	}
	var out bytes.Buffer
	err := reportValidateResults(&out, results, nil, zaptest.NewLogger(t))
	if err == nil || !strings.Contains(err.Error(), "1 of 1 files failed") {
		t.Fatalf("expected aggregate failure, got %v", err)
	}
	if !strings.Contains(out.String(), "missing.xlsx: FAILED") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestResolveHistoryMode(t *testing.T) {
	tests := []struct {
		mode          string
		configDefault bool
		want          bool
		wantErr       bool
	}{
		{mode: "", configDefault: true, want: true},
		{mode: "auto", configDefault: false, want: false},
		{mode: "ON", configDefault: false, want: true},
		{mode: "no", configDefault: true, want: false},
		{mode: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		got, err := resolveHistoryMode(tt.mode, tt.configDefault)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for mode %q", tt.mode)
			}
			continue
		}
		if err != nil {
			t.Fatalf("mode %q: %v", tt.mode, err)
		}
		if got != tt.want {
			t.Fatalf("mode %q: expected %v, got %v", tt.mode, tt.want, got)
		}
	}
}

func TestApplyHeaderOverrides(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	if err := applyHeaderOverrides(&cfg, 0, ""); err != nil {
		t.Fatalf("no overrides: %v", err)
	}
	if cfg.Header.Mode != processor.HeaderModeScan || cfg.Header.Marker != "dominio" {
		t.Fatalf("expected defaults untouched: %+v", cfg.Header)
	}

	if err := applyHeaderOverrides(&cfg, 4, " patente "); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
	if cfg.Header.Mode != processor.HeaderModeFixed || cfg.Header.Row != 4 || cfg.Header.Marker != "patente" {
		t.Fatalf("unexpected header config: %+v", cfg.Header)
	}

	if err := applyHeaderOverrides(&cfg, -1, ""); err == nil {
		t.Fatalf("expected error for negative header row")
	}
}
