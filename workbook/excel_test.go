package workbook

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func writeFixture(t *testing.T, path string, build func(f *excelize.File, sheet string)) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	build(f, sheet)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
}

func TestOpen_ReadsRawAndFormattedValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flota.xlsx")
	writeFixture(t, path, func(f *excelize.File, sheet string) {
		_ = f.SetSheetRow(sheet, "A1", &[]any{"Dominio", "Vto VTV", "Odometro"})
		_ = f.SetCellValue(sheet, "A2", "ab-123")
		_ = f.SetCellValue(sheet, "B2", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC))
		_ = f.SetCellValue(sheet, "C2", 15000)
	})

	book, err := Open(path, DefaultStyle())
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()

	rows, err := book.Rows()
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0].Text != "Dominio" {
		t.Fatalf("unexpected header cell: %+v", rows[0][0])
	}
	date := rows[1][1]
	if date.Raw != "44941" {
		t.Fatalf("expected serial raw value, got %+v", date)
	}
	if date.Text == date.Raw {
		t.Fatalf("expected formatted date text to differ from raw, got %+v", date)
	}
	if rows[1][2].Raw != "15000" {
		t.Fatalf("unexpected numeric cell: %+v", rows[1][2])
	}
	if len(book.Fingerprint()) != 16 {
		t.Fatalf("unexpected fingerprint %q", book.Fingerprint())
	}
}

func TestExcel_SetValueHighlightAndRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flota.xlsx")
	writeFixture(t, path, func(f *excelize.File, sheet string) {
		_ = f.SetSheetRow(sheet, "A1", &[]any{"Dominio", "Odometro"})
		_ = f.SetSheetRow(sheet, "A2", &[]any{"ab-123", "mucho"})
	})

	book, err := Open(path, DefaultStyle())
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()

	if err := book.SetValue(2, 1, "AB123"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if err := book.Highlight(2, 2); err != nil {
		t.Fatalf("highlight: %v", err)
	}
	if err := book.Highlight(2, 2); err != nil {
		t.Fatalf("highlight twice: %v", err)
	}

	var buf bytes.Buffer
	if _, err := book.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	reopened, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer reopened.Close()

	sheet := reopened.GetSheetName(0)
	value, _ := reopened.GetCellValue(sheet, "A2")
	if value != "AB123" {
		t.Fatalf("expected corrected value, got %q", value)
	}

	styleID, err := reopened.GetCellStyle(sheet, "B2")
	if err != nil || styleID == 0 {
		t.Fatalf("expected highlighted cell to carry a style, got %d (%v)", styleID, err)
	}
	style, err := reopened.GetStyle(styleID)
	if err != nil {
		t.Fatalf("get style: %v", err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Fatalf("expected bold font, got %+v", style.Font)
	}
	if style.Fill.Pattern != 1 {
		t.Fatalf("expected solid fill, got %+v", style.Fill)
	}

	untouched, _ := reopened.GetCellStyle(sheet, "A2")
	if untouched != 0 {
		t.Fatalf("expected corrected cell to keep default style, got %d", untouched)
	}
}

func TestExcel_AppendSheetReplacesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flota.xlsx")
	writeFixture(t, path, func(f *excelize.File, sheet string) {
		_ = f.SetSheetRow(sheet, "A1", &[]any{"Dominio"})
	})

	book, err := Open(path, DefaultStyle())
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()

	first := [][]any{{"Row", "Column"}, {2, "Dominio"}, {3, "Dominio"}}
	second := [][]any{{"Row", "Column"}, {4, "Marca"}}
	if err := book.AppendSheet("Log de Errores", first); err != nil {
		t.Fatalf("append sheet: %v", err)
	}
	if err := book.AppendSheet("Log de Errores", second); err != nil {
		t.Fatalf("append sheet again: %v", err)
	}

	rows, err := book.SheetRows("Log de Errores")
	if err != nil {
		t.Fatalf("read log sheet: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "4" || rows[1][1] != "Marca" {
		t.Fatalf("unexpected log sheet rows: %#v", rows)
	}
	if got := len(book.file.GetSheetList()); got != 2 {
		t.Fatalf("expected 2 sheets, got %d", got)
	}
	if err := book.AppendSheet(book.SheetName(), second); err == nil {
		t.Fatalf("expected error when overwriting the validated sheet")
	}
}

func TestOpen_LoadsSemicolonCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flota.csv")
	content := "\xEF\xBB\xBFDominio;Marca;Cons. Promedio\nab-123;toyota;7,25\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	book, err := Open(path, DefaultStyle())
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer book.Close()

	rows, err := book.Rows()
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 || len(rows[0]) != 3 {
		t.Fatalf("unexpected shape: %#v", rows)
	}
	if rows[0][0].Text != "Dominio" {
		t.Fatalf("expected BOM to be stripped, got %q", rows[0][0].Text)
	}
	if rows[1][2].Text != "7,25" {
		t.Fatalf("unexpected decimal cell: %+v", rows[1][2])
	}
}

func TestOpen_RejectsUnsupportedFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flota.txt")
	if err := os.WriteFile(path, []byte("Dominio\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := Open(path, DefaultStyle())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
